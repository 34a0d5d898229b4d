package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/schoolsite/internal/domain"
)

var errDisabled = errors.New("developer mode is disabled")

type fakePreview struct {
	disabled bool
	pinned   bool
	id       *int64
}

func (f *fakePreview) Tenants() []domain.Tenant {
	return []domain.Tenant{
		{ID: 1, Domain: "smkpelita.mysite.test", Name: "SMK Pelita"},
		{ID: 2, Domain: "sman3.mysite.test", Name: "SMAN 3"},
	}
}

func (f *fakePreview) Pin(id *int64) (domain.ResolutionContext, error) {
	if f.disabled {
		return domain.ResolutionContext{}, errDisabled
	}
	f.pinned, f.id = true, id
	return f.Current(), nil
}

func (f *fakePreview) Unpin() (domain.ResolutionContext, error) {
	if f.disabled {
		return domain.ResolutionContext{}, errDisabled
	}
	f.pinned, f.id = false, nil
	return f.Current(), nil
}

func (f *fakePreview) Current() domain.ResolutionContext {
	if !f.pinned {
		return domain.NewResolutionContext(&domain.Tenant{ID: 1, Domain: "smkpelita.mysite.test"}, false)
	}
	if f.id == nil {
		return domain.NewResolutionContext(nil, true)
	}
	return domain.NewResolutionContext(&domain.Tenant{ID: *f.id, Domain: "sman3.mysite.test"}, true)
}

func newConsole(p Preview) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(p, out, slog.New(slog.NewTextHandler(io.Discard, nil))), out
}

func TestParseTarget(t *testing.T) {
	id, err := ParseTarget(" 5 ")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(5), *id)

	id, err = ParseTarget("Platform")
	require.NoError(t, err)
	assert.Nil(t, id)

	for _, bad := range []string{"", "0", "-3", "five"} {
		_, err := ParseTarget(bad)
		assert.ErrorIs(t, err, ErrInvalidTarget, bad)
	}
}

func TestConsole_Exec(t *testing.T) {
	t.Run("pin and unpin", func(t *testing.T) {
		p := &fakePreview{}
		c, out := newConsole(p)

		require.NoError(t, c.Exec("pin 2"))
		require.NotNil(t, p.id)
		assert.Equal(t, int64(2), *p.id)
		assert.Contains(t, out.String(), "context: school 2 sman3.mysite.test [override]")

		out.Reset()
		require.NoError(t, c.Exec(":pin platform"))
		assert.Nil(t, p.id)
		assert.Equal(t, "context: platform [override]\n", out.String())

		out.Reset()
		require.NoError(t, c.Exec("unpin"))
		assert.False(t, p.pinned)
		assert.Equal(t, "context: school 1 smkpelita.mysite.test\n", out.String())
	})

	t.Run("tenants", func(t *testing.T) {
		c, out := newConsole(&fakePreview{})
		require.NoError(t, c.Exec("tenants"))
		assert.Equal(t, 2, strings.Count(out.String(), "\n"))
		assert.Contains(t, out.String(), "2\tsman3.mysite.test\tSMAN 3")
	})

	t.Run("errors", func(t *testing.T) {
		c, _ := newConsole(&fakePreview{})
		assert.ErrorIs(t, c.Exec("pin"), ErrInvalidTarget)
		assert.ErrorIs(t, c.Exec("pin abc"), ErrInvalidTarget)
		assert.ErrorIs(t, c.Exec("reboot"), ErrUnknownCommand)

		c, _ = newConsole(&fakePreview{disabled: true})
		assert.ErrorIs(t, c.Exec("pin 2"), errDisabled)
		assert.ErrorIs(t, c.Exec("unpin"), errDisabled)
	})
}

func TestConsole_Run(t *testing.T) {
	p := &fakePreview{}
	c, out := newConsole(p)

	in := strings.NewReader("pin 2\n\nbogus\ncontext\nquit\npin 1\n")
	require.NoError(t, c.Run(context.Background(), in))

	require.NotNil(t, p.id)
	assert.Equal(t, int64(2), *p.id, "commands after quit are not run")
	assert.Contains(t, out.String(), `error: unknown command: "bogus"`)
	assert.Equal(t, 2, strings.Count(out.String(), "context: school 2"))
}

func TestConsole_RunStopsWhenContextEnds(t *testing.T) {
	p := &fakePreview{}
	c, _ := newConsole(p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Run(ctx, strings.NewReader("pin 2\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, p.pinned)
}
