package graygelf

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiG/graygelf/gelf"
	"github.com/GiG/graygelf/scraper"
)

func recordMessages(client *Client) *[]gelf.Document {
	var docs []gelf.Document
	client.OnMessage(func(doc gelf.Document) { docs = append(docs, doc) })
	return &docs
}

func TestIfStreamSendsOneMessagePerLine(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Notice, "plain")
	require.NoError(t, err)

	n, err := stream.Write([]byte("first\nsecond\r\n\nthi"))
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	require.Len(t, *docs, 2)

	_, err = stream.Write([]byte("rd"))
	require.NoError(t, err)
	require.Len(t, *docs, 2)
	require.NoError(t, stream.Close())

	require.Len(t, *docs, 3)
	assert.Equal(t, "first", (*docs)[0].ShortMessage())
	assert.Equal(t, "second", (*docs)[1].ShortMessage())
	assert.Equal(t, "third", (*docs)[2].ShortMessage())
	for _, doc := range *docs {
		assert.Equal(t, 5, doc[gelf.KeyLevel])
	}
}

func TestIfStreamParsesLogFmtLines(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "logfmt")
	require.NoError(t, err)

	_, err = stream.Write([]byte("level=error msg=\"disk full\" disk=sda\nlevel=loud msg=odd\n"))
	require.NoError(t, err)

	require.Len(t, *docs, 2)
	assert.Equal(t, "disk full", (*docs)[0].ShortMessage())
	assert.Equal(t, 3, (*docs)[0][gelf.KeyLevel])
	assert.Equal(t, "sda", (*docs)[0]["_disk"])
	assert.NotContains(t, (*docs)[0], "_level")
	assert.Equal(t, 6, (*docs)[1][gelf.KeyLevel])
	assert.Equal(t, "loud", (*docs)[1]["_level"])
}

func TestIfStreamParsesJSONLines(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "json")
	require.NoError(t, err)

	_, err = stream.Write([]byte(`{"message":"started","port":8080}` + "\n" + `{"port":9090}` + "\n"))
	require.NoError(t, err)

	require.Len(t, *docs, 2)
	assert.Equal(t, "started", (*docs)[0].ShortMessage())
	assert.Equal(t, 8080.0, (*docs)[0]["_port"])
	assert.Equal(t, `{"port":9090}`, (*docs)[1].ShortMessage())
}

func TestIfStreamSendsUnparseableLinesAsText(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "json")
	require.NoError(t, err)

	_, err = stream.Write([]byte("not json\n"))
	require.NoError(t, err)

	require.Len(t, *docs, 1)
	assert.Equal(t, "not json", (*docs)[0].ShortMessage())
}

func TestIfStreamSplitsOverlongLines(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "")
	require.NoError(t, err)

	_, err = stream.Write([]byte(strings.Repeat("a", maxLineSize+10)))
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	require.Len(t, *docs, 2)
	assert.Len(t, (*docs)[0].ShortMessage(), maxLineSize)
	assert.Len(t, (*docs)[1].ShortMessage(), 10)
}

func TestIfStreamSplitsOverlongTerminatedLines(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "")
	require.NoError(t, err)

	_, err = stream.Write([]byte(strings.Repeat("a", maxLineSize+10) + "\nnext\n"))
	require.NoError(t, err)

	require.Len(t, *docs, 3)
	assert.Len(t, (*docs)[0].ShortMessage(), maxLineSize)
	assert.Len(t, (*docs)[1].ShortMessage(), 10)
	assert.Equal(t, "next", (*docs)[2].ShortMessage())
}

func TestIfStreamDoesNotSplitMultiByteCharacters(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "")
	require.NoError(t, err)
	line := strings.Repeat("a", maxLineSize-1) + "éé"

	_, err = stream.Write([]byte(line + "\n"))
	require.NoError(t, err)

	require.Len(t, *docs, 2)
	first, second := (*docs)[0].ShortMessage(), (*docs)[1].ShortMessage()
	assert.True(t, utf8.ValidString(first))
	assert.True(t, utf8.ValidString(second))
	assert.Len(t, first, maxLineSize-1)
	assert.Equal(t, line, first+second)
}

func TestIfStreamDropsConfiguredKeys(t *testing.T) {
	client, transport, _ := newTestClient(t, testConfig())
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "logfmt", "password", "token")
	require.NoError(t, err)

	_, err = stream.Write([]byte("msg=login user=alice password=secret token=abc\n"))
	require.NoError(t, err)
	closeClient(t, client)

	require.Len(t, *docs, 1)
	assert.Equal(t, "login", (*docs)[0].ShortMessage())
	assert.Equal(t, "alice", (*docs)[0]["_user"])
	assert.NotContains(t, (*docs)[0], "_password")
	assert.NotContains(t, (*docs)[0], "_token")
	require.Len(t, transport.Datagrams(), 1)
	assert.NotContains(t, string(transport.Datagrams()[0]), "secret")
}

func TestIfStreamReadsFromReader(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	docs := recordMessages(client)
	stream, err := client.Stream(gelf.Info, "plain")
	require.NoError(t, err)

	n, err := stream.ReadFrom(strings.NewReader("a\nb\nc"))
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	assert.Equal(t, int64(5), n)
	assert.Len(t, *docs, 3)
}

func TestIfStreamRejectsWritesAfterClose(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)
	stream, err := client.Stream(gelf.Info, "plain")
	require.NoError(t, err)

	require.NoError(t, stream.Close())
	_, err = stream.Write([]byte("late\n"))

	assert.Equal(t, ErrClosed, err)
	assert.NoError(t, stream.Close())
}

func TestIfStreamRejectsUnknownFormat(t *testing.T) {
	client, _, _ := newTestClient(t, testConfig())
	defer closeClient(t, client)

	_, err := client.Stream(gelf.Info, "xml")

	assert.Equal(t, scraper.ErrUnknownFormat, errors.Cause(err))
}
