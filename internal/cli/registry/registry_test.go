package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matebackport/internal/config"
	"github.com/thomas-vilte/matebackport/internal/i18n"
	"github.com/urfave/cli/v3"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name: m.name,
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	return NewRegistry(&config.Config{}, translations)
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register new factory successfully", func(t *testing.T) {
		registry := newTestRegistry(t)

		// act
		err := registry.Register("test-command", &mockCommandFactory{name: "test-command"})

		// assert
		assert.NoError(t, err)
		assert.Len(t, registry.factories, 1)
		assert.Contains(t, registry.factories, "test-command")
	})

	t.Run("should return error when registering duplicate factory", func(t *testing.T) {
		registry := newTestRegistry(t)
		factory := &mockCommandFactory{name: "test-command"}

		// act
		_ = registry.Register("test-command", factory)
		err := registry.Register("test-command", factory)

		// assert
		assert.Error(t, err)
		assert.Len(t, registry.factories, 1)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	t.Run("should create commands in registration order", func(t *testing.T) {
		registry := newTestRegistry(t)
		_ = registry.Register("backport", &mockCommandFactory{name: "backport"})
		_ = registry.Register("version", &mockCommandFactory{name: "version"})

		// act
		commands := registry.CreateCommands()

		// assert
		require.Len(t, commands, 2)
		assert.Equal(t, "backport", commands[0].Name)
		assert.Equal(t, "version", commands[1].Name)
	})

	t.Run("should return empty slice when no factories registered", func(t *testing.T) {
		registry := newTestRegistry(t)

		commands := registry.CreateCommands()

		assert.Empty(t, commands)
	})
}
