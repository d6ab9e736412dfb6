package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/promptdeck/internal/domain/entities"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderDeck(ctx context.Context, deck *entities.Deck) ([]byte, error) {
	args := m.Called(ctx, deck)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRenderer) RenderSlide(ctx context.Context, slide *entities.Slide) ([]byte, error) {
	args := m.Called(ctx, slide)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockViewerSync struct {
	mock.Mock
}

func (m *MockViewerSync) Subscribe(clientID string) <-chan entities.SyncEvent {
	args := m.Called(clientID)
	return args.Get(0).(<-chan entities.SyncEvent)
}

func (m *MockViewerSync) Unsubscribe(clientID string) {
	m.Called(clientID)
}

func (m *MockViewerSync) Broadcast(event entities.SyncEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockViewerSync) ReplaceDeck(deck *entities.Deck) error {
	args := m.Called(deck)
	return args.Error(0)
}

func (m *MockViewerSync) GetState() *entities.ViewerState {
	args := m.Called()
	return args.Get(0).(*entities.ViewerState)
}

func (m *MockViewerSync) Display() entities.DisplayState {
	args := m.Called()
	return args.Get(0).(entities.DisplayState)
}

func (m *MockViewerSync) Stop() {
	m.Called()
}

func testServerConfig() *entities.ServerConfig {
	return &entities.ServerConfig{
		Host:        "localhost",
		Port:        1000,
		Environment: "development",
	}
}

func sampleDeck() *entities.Deck {
	return &entities.Deck{
		Title:  "Prompt Injection in the Wild",
		Author: "Ana",
		Theme:  "conference",
		Slides: []entities.Slide{
			{Index: 0, Title: "Intro", HTML: "<h1>Intro</h1>"},
			{Index: 1, Title: "Attack", HTML: "<h1>Attack</h1><script>alert(1)</script>"},
		},
	}
}

func TestHandleViewer(t *testing.T) {
	t.Run("renders current deck", func(t *testing.T) {
		renderer := new(MockRenderer)
		renderer.On("RenderDeck", mock.Anything, mock.Anything).Return([]byte("<html>deck</html>"), nil)

		srv := NewServer(renderer, testServerConfig())
		srv.SetDeck(sampleDeck())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		srv.handleViewer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Equal(t, "<html>deck</html>", rec.Body.String())
	})

	t.Run("placeholder when no deck loaded", func(t *testing.T) {
		renderer := new(MockRenderer)
		renderer.On("RenderDeck", mock.Anything, mock.MatchedBy(func(d *entities.Deck) bool {
			return d.Title == "No Deck Loaded"
		})).Return([]byte("placeholder"), nil)

		srv := NewServer(renderer, testServerConfig())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		srv.handleViewer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		renderer.AssertExpectations(t)
	})
}

func TestHandleSlides(t *testing.T) {
	srv := NewServer(new(MockRenderer), testServerConfig())
	srv.SetDeck(sampleDeck())

	req := httptest.NewRequest(http.MethodGet, "/api/slides", nil)
	rec := httptest.NewRecorder()
	srv.handleSlides(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SlidesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Prompt Injection in the Wild", resp.Title)
	require.Len(t, resp.Slides, 2)
	assert.Contains(t, resp.Slides[1].HTML, "<h1>Attack</h1>")
	assert.NotContains(t, resp.Slides[1].HTML, "<script>", "script tags must be stripped")
}

func TestHandleConfig(t *testing.T) {
	srv := NewServer(new(MockRenderer), testServerConfig())
	srv.SetDeck(sampleDeck())

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	srv.handleConfig(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conference", resp.Theme)
	assert.Equal(t, "/ws", resp.WebSocketURL)
	assert.False(t, resp.LabEnabled)
}

func TestHandleState(t *testing.T) {
	t.Run("no sync service", func(t *testing.T) {
		srv := NewServer(new(MockRenderer), testServerConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()
		srv.handleState(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("returns viewer state", func(t *testing.T) {
		syncSvc := new(MockViewerSync)
		syncSvc.On("GetState").Return(&entities.ViewerState{
			CurrentSlide: 3,
			TotalSlides:  16,
			Counter:      "4 / 16",
			Progress:     0.2,
		})

		srv := NewServer(new(MockRenderer), testServerConfig())
		srv.SetSyncService(syncSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()
		srv.handleState(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var state entities.ViewerState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
		assert.Equal(t, 3, state.CurrentSlide)
		assert.Equal(t, "4 / 16", state.Counter)
	})
}

func TestHandleNavigate(t *testing.T) {
	newServer := func(syncSvc *MockViewerSync) *Server {
		srv := NewServer(new(MockRenderer), testServerConfig())
		srv.SetSyncService(syncSvc)
		return srv
	}

	post := func(srv *Server, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/navigate", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		srv.handleNavigate(rec, req)
		return rec
	}

	t.Run("action broadcast", func(t *testing.T) {
		syncSvc := new(MockViewerSync)
		syncSvc.On("Broadcast", mock.MatchedBy(func(e entities.SyncEvent) bool {
			return e.Type == "navigation" && e.Data["action"] == "next"
		})).Return(nil)
		syncSvc.On("GetState").Return(&entities.ViewerState{CurrentSlide: 1})

		rec := post(newServer(syncSvc), `{"action":"next"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		syncSvc.AssertExpectations(t)
	})

	t.Run("key events map to actions", func(t *testing.T) {
		tests := []struct {
			event  string
			action string
		}{
			{"ArrowRight", "next"},
			{"Space", "next"},
			{"ArrowLeft", "prev"},
			{"Home", "first"},
			{"End", "last"},
		}

		for _, tt := range tests {
			t.Run(tt.event, func(t *testing.T) {
				syncSvc := new(MockViewerSync)
				syncSvc.On("Broadcast", mock.MatchedBy(func(e entities.SyncEvent) bool {
					return e.Data["action"] == tt.action
				})).Return(nil)
				syncSvc.On("GetState").Return(&entities.ViewerState{})

				rec := post(newServer(syncSvc), `{"event":"`+tt.event+`"}`)
				assert.Equal(t, http.StatusOK, rec.Code)
				syncSvc.AssertExpectations(t)
			})
		}
	})

	t.Run("unknown key event rejected", func(t *testing.T) {
		rec := post(newServer(new(MockViewerSync)), `{"event":"PageDown"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("goto with slide index", func(t *testing.T) {
		syncSvc := new(MockViewerSync)
		syncSvc.On("Broadcast", mock.MatchedBy(func(e entities.SyncEvent) bool {
			return e.Data["action"] == "goto" && e.Data["slide"] == float64(7)
		})).Return(nil)
		syncSvc.On("GetState").Return(&entities.ViewerState{CurrentSlide: 7})

		rec := post(newServer(syncSvc), `{"action":"goto","slide":7}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("out of range index reports detail", func(t *testing.T) {
		syncSvc := new(MockViewerSync)
		syncSvc.On("Broadcast", mock.Anything).
			Return(&entities.OutOfRangeError{Index: 42, Total: 16})

		rec := post(newServer(syncSvc), `{"action":"goto","slide":42}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Message, "42")
	})

	t.Run("missing action and event", func(t *testing.T) {
		rec := post(newServer(new(MockViewerSync)), `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := post(newServer(new(MockViewerSync)), `{broken`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleTimer(t *testing.T) {
	post := func(srv *Server, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/timer", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		srv.handleTimer(rec, req)
		return rec
	}

	t.Run("valid action", func(t *testing.T) {
		syncSvc := new(MockViewerSync)
		syncSvc.On("Broadcast", mock.MatchedBy(func(e entities.SyncEvent) bool {
			return e.Type == "timer" && e.Data["action"] == "pause"
		})).Return(nil)
		syncSvc.On("GetState").Return(&entities.ViewerState{IsPaused: true})

		srv := NewServer(new(MockRenderer), testServerConfig())
		srv.SetSyncService(syncSvc)

		rec := post(srv, `{"action":"pause"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid action", func(t *testing.T) {
		srv := NewServer(new(MockRenderer), testServerConfig())
		srv.SetSyncService(new(MockViewerSync))

		rec := post(srv, `{"action":"rewind"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
