package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

// fakeAPI 记录收到的请求，并对已知路径返回固定响应。
func fakeAPI(t *testing.T, requests *[]recordedRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		*requests = append(*requests, rec)
	}
	mux.HandleFunc("/pessoas/", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/pessoas/":
			_, _ = w.Write([]byte(`{"id":0,"nome":"Alice","idade":28,"interesses":["música"]}`))
		case r.URL.Path == "/pessoas/99":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Pessoa não encontrada"}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	mux.HandleFunc("/caminho/", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		_, _ = w.Write([]byte(`{"caminho":["Alice","Bob"],"graus_separacao":1}`))
	})
	mux.HandleFunc("/query-personalizada/", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--server", server))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPessoasCreate_SendsPayload(t *testing.T) {
	var requests []recordedRequest
	srv := fakeAPI(t, &requests)

	out, err := runCLI(t, srv.URL, "pessoas", "create", "--nome", "Alice", "--idade", "28", "--interesse", "música")
	require.NoError(t, err)

	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, "Alice", requests[0].Body["nome"])
	assert.EqualValues(t, 28, requests[0].Body["idade"])
	assert.Equal(t, []interface{}{"música"}, requests[0].Body["interesses"])
	assert.NotContains(t, requests[0].Body, "cidade")
	assert.Contains(t, out, `"nome": "Alice"`)
}

func TestPessoasCreate_WithoutInteressesSendsEmptyList(t *testing.T) {
	var requests []recordedRequest
	srv := fakeAPI(t, &requests)
	novaInteresses = nil

	_, err := runCLI(t, srv.URL, "pessoas", "create", "--nome", "", "--idade", "20")
	require.NoError(t, err)

	require.Len(t, requests, 1)
	assert.Equal(t, "", requests[0].Body["nome"])
	assert.Equal(t, []interface{}{}, requests[0].Body["interesses"])
}

func TestPessoasGet_NotFoundSurfacesDetail(t *testing.T) {
	var requests []recordedRequest
	srv := fakeAPI(t, &requests)

	_, err := runCLI(t, srv.URL, "pessoas", "get", "99")
	require.Error(t, err)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Pessoa não encontrada", apiErr.Detail)
}

func TestIDArgsRejectNonIntegers(t *testing.T) {
	var requests []recordedRequest
	srv := fakeAPI(t, &requests)

	_, err := runCLI(t, srv.URL, "conhecer", "1", "abc")
	require.Error(t, err)
	assert.Empty(t, requests)
}

func TestRoutes(t *testing.T) {
	var requests []recordedRequest
	srv := fakeAPI(t, &requests)

	cases := []struct {
		args   []string
		method string
		path   string
	}{
		{[]string{"conhecer", "1", "2"}, http.MethodPost, "/pessoas/1/conhece/2"},
		{[]string{"amigos", "1"}, http.MethodGet, "/pessoas/1/amigos"},
		{[]string{"rede", "1", "2"}, http.MethodGet, "/pessoas/1/rede/2"},
		{[]string{"similares", "3"}, http.MethodGet, "/pessoas/3/similares"},
		{[]string{"pessoas", "interesse", "música"}, http.MethodGet, "/pessoas/interesse/música"},
		{[]string{"caminho", "0", "1"}, http.MethodGet, "/caminho/0/1"},
	}
	for _, tc := range cases {
		requests = nil
		_, err := runCLI(t, srv.URL, tc.args...)
		require.NoError(t, err, tc.args)
		require.Len(t, requests, 1, tc.args)
		assert.Equal(t, tc.method, requests[0].Method, tc.args)
		assert.Equal(t, tc.path, requests[0].Path, tc.args)
	}
}

func TestConsulta_QueryParameters(t *testing.T) {
	var requests []recordedRequest
	srv := fakeAPI(t, &requests)

	_, err := runCLI(t, srv.URL, "consulta", "--cidade", "Rio de Janeiro", "--interesse", "esportes")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "cidade=Rio+de+Janeiro&interesse=esportes", requests[0].Query)
}

func TestEventosURL(t *testing.T) {
	old := serverURL
	defer func() { serverURL = old }()

	serverURL = "http://localhost:8000/"
	u, err := eventosURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/ws/eventos", u)

	serverURL = "https://rede.example.com/api"
	u, err = eventosURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://rede.example.com/api/ws/eventos", u)
}

func TestWatch_PrintsEventos(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/eventos" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"tipo":"pessoa_criada"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"tipo":"relacionamento_criado","origem":0,"destino":1}`))
	}))
	defer srv.Close()

	out, err := runCLI(t, srv.URL, "watch", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"tipo": "pessoa_criada"`)
	assert.Contains(t, out, `"origem": 0`)
}
