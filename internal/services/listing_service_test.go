package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const listingPage = `<!DOCTYPE html>
<html>
<body>
	<h1>Datos abiertos</h1>
	<ul>
		<li><a href="/descargas/json/2024/1/records.zip">Enero 2024</a></li>
		<li><a href="/descargas/sha/2024/1/records.sha">Enero 2024 sha</a></li>
		<li><a href="/descargas/json/2024/2/records.zip">Febrero 2024</a></li>
		<li><a href="/descargas/json/2023/12/records.zip">Diciembre 2023</a></li>
		<li><a href="/descargas/sha/2024/3/records.sha">Marzo 2024 sha sin payload</a></li>
		<li><a href="/descargas/json/2024/13/records.zip">mes invalido</a></li>
		<li><a href="/ayuda/manual.pdf">Manual</a></li>
	</ul>
</body>
</html>`

func TestListingDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listingPage))
	}))
	defer server.Close()

	service, err := NewListingService(server.Client())
	if err != nil {
		t.Fatalf("NewListingService: %v", err)
	}

	links, err := service.Discover(context.Background(), server.URL+"/datos-abiertos", []int{2024})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("links = %d, want 2: %+v", len(links), links)
	}

	first := links[0]
	if first.Year != 2024 || first.Month != 1 {
		t.Fatalf("first period = %d-%d, want 2024-1", first.Year, first.Month)
	}
	if first.PayloadURL != server.URL+"/descargas/json/2024/1/records.zip" {
		t.Fatalf("first payload url = %q", first.PayloadURL)
	}
	if first.DigestURL != server.URL+"/descargas/sha/2024/1/records.sha" {
		t.Fatalf("first digest url = %q", first.DigestURL)
	}

	second := links[1]
	if second.Year != 2024 || second.Month != 2 {
		t.Fatalf("second period = %d-%d, want 2024-2", second.Year, second.Month)
	}
	if second.DigestURL != "" {
		t.Fatalf("second digest url = %q, want empty", second.DigestURL)
	}
}

func TestListingDiscoverAllYearsWhenUnfiltered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage))
	}))
	defer server.Close()

	service, err := NewListingService(server.Client())
	if err != nil {
		t.Fatalf("NewListingService: %v", err)
	}

	links, err := service.Discover(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("links = %d, want 3", len(links))
	}
	if links[0].Year != 2023 || links[0].Month != 12 {
		t.Fatalf("first period = %d-%d, want 2023-12", links[0].Year, links[0].Month)
	}
}

func TestListingDiscoverErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service, err := NewListingService(nil)
	if err != nil {
		t.Fatalf("NewListingService: %v", err)
	}

	if _, err := service.Discover(context.Background(), server.URL, []int{2024}); err == nil {
		t.Fatalf("Discover on 503: expected error")
	}
	if _, err := service.Discover(context.Background(), "", []int{2024}); err == nil {
		t.Fatalf("Discover empty url: expected error")
	}
}
