package elastic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newCluster(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(url string) *Client {
	return New(url, 5*time.Second, zerolog.Nop())
}

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	return path
}

func TestReachable(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if !testClient(srv.URL).Reachable(context.Background()) {
		t.Fatal("expected reachable cluster")
	}
}

func TestReachableFalseOnServerError(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if testClient(srv.URL).Reachable(context.Background()) {
		t.Fatal("expected unreachable for 503")
	}
}

func TestReachableFalseOnUnroutableURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	if testClient(url).Reachable(context.Background()) {
		t.Fatal("expected unreachable for closed listener")
	}
}

func TestRegisterRepositoryMissingPayload(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	status, err := testClient(srv.URL).RegisterRepository(context.Background(), "backups", filepath.Join(t.TempDir(), "absent.json"))
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if KindOf(err) != KindPreconditionNotMet {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}
}

func TestRegisterRepositoryMissingPayloadUnreachableCluster(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	status, _ := testClient(url).RegisterRepository(context.Background(), "backups", filepath.Join(t.TempDir(), "absent.json"))
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestRegisterRepositoryInvalidJSON(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	status, err := testClient(srv.URL).RegisterRepository(context.Background(), "backups", writePayload(t, "{not json"))
	if status != http.StatusNotAcceptable {
		t.Fatalf("expected 406, got %d", status)
	}
	if KindOf(err) != KindInvalidPayload {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}
}

func TestRegisterRepositoryPutsPayload(t *testing.T) {
	var gotMethod, gotPath string
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"acknowledged":true}`))
	})
	status, err := testClient(srv.URL).RegisterRepository(context.Background(), "backups", writePayload(t, `{"type":"s3"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if gotMethod != http.MethodPut || gotPath != "/_snapshot/backups" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestVerifyRepository(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost || r.URL.Path != "/_snapshot/backups/_verify" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"compensates":false}`))
	})
	resp, err := testClient(srv.URL).VerifyRepository(context.Background(), "backups")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp["compensates"] != false {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestVerifyRepositoryUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	resp, err := testClient(url).VerifyRepository(context.Background(), "backups")
	if resp != nil {
		t.Fatalf("expected absent result, got %v", resp)
	}
	if KindOf(err) != KindPreconditionNotMet {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}
}

func TestVerifyRepositoryMalformedResponse(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte("<html>not json</html>"))
	})
	resp, err := testClient(srv.URL).VerifyRepository(context.Background(), "backups")
	if resp != nil {
		t.Fatalf("expected absent result, got %v", resp)
	}
	if KindOf(err) != KindInvalidPayload {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}
}

func TestCreateSnapshot(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPut || r.URL.Path != "/_snapshot/backups/snapshot-2024-01-01" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"accepted":true}`))
	})
	resp, err := testClient(srv.URL).CreateSnapshot(context.Background(), "backups", "snapshot-2024-01-01", writePayload(t, `{"indices":"*"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp["accepted"] != true {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestCreateSnapshotMissingPayload(t *testing.T) {
	srv := newCluster(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	resp, err := testClient(srv.URL).CreateSnapshot(context.Background(), "backups", "snapshot-2024-01-01", filepath.Join(t.TempDir(), "absent.json"))
	if resp != nil {
		t.Fatalf("expected absent result, got %v", resp)
	}
	if KindOf(err) != KindPreconditionNotMet {
		t.Fatalf("unexpected kind: %v", KindOf(err))
	}
}

func TestKindStatusCodes(t *testing.T) {
	if KindInvalidPayload.StatusCode() != http.StatusNotAcceptable {
		t.Fatal("invalid payload should map to 406")
	}
	for _, k := range []Kind{KindNotFound, KindNetworkFailure, KindPreconditionNotMet, KindOther} {
		if k.StatusCode() != http.StatusNotFound {
			t.Fatalf("%v should map to 404", k)
		}
	}
}
