package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name    string
	replies map[int]reply // keyed by call index
	calls   []call
}

type call struct {
	text   string
	prompt string
}

type reply struct {
	summary string
	err     error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Summarize(_ context.Context, text, prompt string) (string, error) {
	idx := len(p.calls)
	p.calls = append(p.calls, call{text: text, prompt: prompt})
	r, ok := p.replies[idx]
	if !ok {
		return "", errors.New("unexpected call")
	}
	return r.summary, r.err
}

func TestSummarizer_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", replies: map[int]reply{0: {summary: "done"}}}
	secondary := &fakeProvider{name: "openai"}

	s := NewSummarizer(primary, secondary, zap.NewNop())
	got, err := s.Summarize(context.Background(), "some   text\nwith   gaps", "Summarize this")
	require.NoError(t, err)
	require.Equal(t, "done", got)
	require.Len(t, primary.calls, 1)
	require.Equal(t, "some text with gaps", primary.calls[0].text, "input must be whitespace-collapsed")
	require.Empty(t, secondary.calls)
}

func TestSummarizer_TruncatesToInputBudget(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", replies: map[int]reply{0: {summary: "ok"}}}
	s := NewSummarizer(primary, nil, zap.NewNop())

	_, err := s.Summarize(context.Background(), strings.Repeat("a", 10000), "p")
	require.NoError(t, err)
	require.Len(t, primary.calls[0].text, inputBudget)
}

func TestSummarizer_MultibyteTruncationKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", replies: map[int]reply{
		0: {err: ErrBadResponse},
		1: {summary: "ok"},
	}}
	s := NewSummarizer(primary, nil, zap.NewNop())

	_, err := s.Summarize(context.Background(), strings.Repeat("你", 3000), "p")
	require.NoError(t, err)
	require.Len(t, primary.calls, 2)

	budgeted := primary.calls[0].text
	require.True(t, utf8.ValidString(budgeted))
	require.LessOrEqual(t, len(budgeted), inputBudget)

	short := primary.calls[1].text
	require.True(t, utf8.ValidString(short))
	require.LessOrEqual(t, len(short), retrySlice)
	require.NotEmpty(t, short)
}

func TestSummarizer_ShortInputRetryOnBadResponse(t *testing.T) {
	t.Parallel()

	longText := strings.Repeat("x", 5000)
	primary := &fakeProvider{name: "gemini", replies: map[int]reply{
		0: {err: ErrBadResponse},
		1: {summary: "short input worked"},
	}}

	s := NewSummarizer(primary, nil, zap.NewNop())
	got, err := s.Summarize(context.Background(), longText, "Summarize")
	require.NoError(t, err)
	require.Equal(t, "short input worked", got)
	require.Len(t, primary.calls, 2)
	require.Len(t, primary.calls[1].text, retrySlice)
	require.Equal(t, "Summarize (short-input fallback)", primary.calls[1].prompt)
}

func TestSummarizer_NoRetryOnTransportError(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", replies: map[int]reply{
		0: {err: errors.New("connection refused")},
	}}
	secondary := &fakeProvider{name: "openai", replies: map[int]reply{
		0: {summary: "secondary summary"},
	}}

	s := NewSummarizer(primary, secondary, zap.NewNop())
	got, err := s.Summarize(context.Background(), "enough text here", "p")
	require.NoError(t, err)
	require.Equal(t, "secondary summary", got)
	require.Len(t, primary.calls, 1, "transport failures must not trigger the short-input retry")
	require.Len(t, secondary.calls, 1)
}

func TestSummarizer_AllProvidersFail(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini", replies: map[int]reply{
		0: {err: ErrBadResponse},
		1: {err: ErrBadResponse},
	}}
	secondary := &fakeProvider{name: "openai", replies: map[int]reply{
		0: {err: errors.New("quota exceeded")},
	}}

	s := NewSummarizer(primary, secondary, zap.NewNop())
	_, err := s.Summarize(context.Background(), "text", "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "gemini:")
	require.Contains(t, err.Error(), "openai: quota exceeded")
}

func TestSummarizer_Unconfigured(t *testing.T) {
	t.Parallel()

	s := NewSummarizer(nil, nil, zap.NewNop())
	require.False(t, s.Configured())
	_, err := s.Summarize(context.Background(), "text", "p")
	require.Error(t, err)
}

func TestSummarizer_EmptyText(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "gemini"}
	s := NewSummarizer(primary, nil, zap.NewNop())
	_, err := s.Summarize(context.Background(), "   \n  ", "p")
	require.Error(t, err)
	require.Empty(t, primary.calls)
}
