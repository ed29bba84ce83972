package module

import (
	"context"
	"errors"
	"testing"

	"github.com/nfrund/eventdesk/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	BaseModule
	name        string
	log         *[]string
	registerErr error
	shutdownErr error
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Register(*registry.Registry) error {
	*r.log = append(*r.log, "register "+r.name)
	return r.registerErr
}

func (r *recorder) Shutdown(context.Context) error {
	*r.log = append(*r.log, "shutdown "+r.name)
	return r.shutdownErr
}

func TestRegisterAll(t *testing.T) {
	var log []string
	mods := []Module{&recorder{name: "a", log: &log}, &recorder{name: "b", log: &log}}
	require.NoError(t, RegisterAll(mods, registry.New(nil)))
	assert.Equal(t, []string{"register a", "register b"}, log)
}

func TestRegisterAll_StopsAtFirstFailure(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	mods := []Module{&recorder{name: "a", log: &log, registerErr: boom}, &recorder{name: "b", log: &log}}

	err := RegisterAll(mods, registry.New(nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"register a"}, log)
}

func TestRegisterAll_RejectsDuplicateNames(t *testing.T) {
	var log []string
	mods := []Module{&recorder{name: "a", log: &log}, &recorder{name: "a", log: &log}}
	assert.ErrorContains(t, RegisterAll(mods, registry.New(nil)), "duplicate module name")
}

func TestShutdownAll_ReverseOrderAndJoinsErrors(t *testing.T) {
	var log []string
	first, second := errors.New("first"), errors.New("second")
	mods := []Module{
		&recorder{name: "a", log: &log, shutdownErr: first},
		&recorder{name: "b", log: &log},
		&recorder{name: "c", log: &log, shutdownErr: second},
	}

	err := ShutdownAll(context.Background(), mods)
	assert.Equal(t, []string{"shutdown c", "shutdown b", "shutdown a"}, log)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestBaseModule(t *testing.T) {
	var b BaseModule
	assert.NoError(t, b.Register(nil))
	assert.NoError(t, b.Boot(context.Background(), nil, nil))
	assert.NoError(t, b.Shutdown(context.Background()))
}
