//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/config"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/db/dbtest"
	"github.com/stwalsh4118/playout/internal/models"
	playoutserver "github.com/stwalsh4118/playout/internal/server"
)

type harness struct {
	cfg   *config.Config
	repos *db.Repositories
	srv   *playoutserver.Server
	http  *httptest.Server
}

// startNATS runs an embedded NATS server for the duration of the test
func startNATS(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: server.RANDOM_PORT, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second), "nats server did not start")
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func newHarness(t *testing.T, natsURL string) *harness {
	t.Helper()
	database, repos := dbtest.Open(t)

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 0, Host: "127.0.0.1", ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		Logging: config.LoggingConfig{Level: "info"},
		Build: config.BuildConfig{
			Horizon:     12 * time.Hour,
			Interval:    time.Hour,
			MaxParallel: 2,
			LockDir:     t.TempDir(),
			Timezone:    "UTC",
			Timeout:     30 * time.Second,
		},
		Library: config.LibraryConfig{FailureThreshold: 3, ResetTimeout: time.Second},
		Events:  config.EventsConfig{Enabled: natsURL != "", URL: natsURL, SubjectPrefix: "it"},
	}

	srv, err := playoutserver.New(cfg, database)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &harness{cfg: cfg, repos: repos, srv: srv, http: ts}
}

func (h *harness) request(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, h.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// seedLibrary creates a collection of episodes of the given lengths in minutes
func (h *harness) seedLibrary(t *testing.T, show string, minutes ...int) *models.Collection {
	t.Helper()
	ctx := context.Background()

	var ids []uint
	for i, m := range minutes {
		title := show + " " + strconv.Itoa(i+1)
		item := models.NewMediaItem(models.MediaKindEpisode, "/tv/"+show+"/"+strconv.Itoa(i+1)+".mkv", title, int64(m*60))
		item.ShowTitle = &show
		require.NoError(t, h.repos.Media.Create(ctx, item))
		ids = append(ids, item.ID)
	}
	col := &models.Collection{Name: show}
	require.NoError(t, h.repos.Collections.CreateCollection(ctx, col))
	require.NoError(t, h.repos.Collections.AddItems(ctx, col.ID, ids...))
	return col
}

func idPath(prefix string, id uint, suffix string) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10) + suffix
}
