package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
	"github.com/fredcamaral/promptdeck/internal/domain/ports"
)

// Mock implementations shared across the service tests.

type MockFileWatcher struct {
	mock.Mock
}

func (m *MockFileWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFileWatcher) Stop() error {
	args := m.Called()
	return args.Error(0)
}

type MockHTTPServer struct {
	mock.Mock
}

func (m *MockHTTPServer) Start(ctx context.Context, port int, host string) error {
	args := m.Called(ctx, port, host)
	return args.Error(0)
}

func (m *MockHTTPServer) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHTTPServer) NotifyClients(event ports.UpdateEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockHTTPServer) SetDeck(deck *entities.Deck) {
	m.Called(deck)
}

func (m *MockHTTPServer) IsRunning() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockDeckParser struct {
	mock.Mock
}

func (m *MockDeckParser) Parse(content []byte) (*entities.Deck, error) {
	args := m.Called(content)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) LoadDeck(ctx context.Context, path string) (*entities.Deck, error) {
	args := m.Called(ctx, path)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckService) ParseDeck(ctx context.Context, content []byte) (*entities.Deck, error) {
	args := m.Called(ctx, content)
	if d := args.Get(0); d != nil {
		return d.(*entities.Deck), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDeckService) WatchDeck(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	args := m.Called(ctx, path)
	if ch := args.Get(0); ch != nil {
		return ch.(<-chan ports.FileChangeEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Chat(ctx context.Context, systemPrompt, userText string) (string, error) {
	args := m.Called(ctx, systemPrompt, userText)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}
