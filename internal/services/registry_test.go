package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock service for testing
type MockService struct {
	name             string
	initializeCalled bool
	initializeError  error
}

func NewMockService(name string) *MockService {
	return &MockService{
		name: name,
	}
}

func (m *MockService) Name() string {
	return m.name
}

func (m *MockService) Initialize() error {
	m.initializeCalled = true
	return m.initializeError
}

func TestRegistry_NewRegistry(t *testing.T) {
	registry := NewRegistry()

	assert.NotNil(t, registry)
	assert.NotNil(t, registry.services)
	assert.Equal(t, 0, len(registry.services))
}

func TestRegistry_RegisterService(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.RegisterService(NewMockService("test1")))
	require.NoError(t, registry.RegisterService(NewMockService("test2")))

	err := registry.RegisterService(NewMockService("test1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Len(t, registry.GetAllServices(), 2)
}

func TestRegistry_GetService(t *testing.T) {
	registry := NewRegistry()
	svc := NewMockService("help")
	require.NoError(t, registry.RegisterService(svc))

	got, err := registry.GetService("help")
	require.NoError(t, err)
	assert.Same(t, svc, got)

	_, err = registry.GetService("missing")
	assert.Error(t, err)
}

func TestRegistry_GetTyped(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterService(NewMockService("mock")))

	svc, err := Get[*MockService](registry, "mock")
	require.NoError(t, err)
	assert.Equal(t, "mock", svc.Name())

	_, err = Get[*AutoCompleteService](registry, "mock")
	assert.Error(t, err)
}

func TestRegistry_InitializeAll(t *testing.T) {
	registry := NewRegistry()
	a, b := NewMockService("a"), NewMockService("b")
	require.NoError(t, registry.RegisterService(a))
	require.NoError(t, registry.RegisterService(b))

	require.NoError(t, registry.InitializeAll())
	assert.True(t, a.initializeCalled)
	assert.True(t, b.initializeCalled)

	b.initializeError = errors.New("boom")
	err := registry.InitializeAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize service b")
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = registry.RegisterService(NewMockService(fmt.Sprintf("svc%d", i)))
		}(i)
	}
	wg.Wait()
	assert.Len(t, registry.GetAllServices(), 20)
}
