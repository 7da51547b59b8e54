package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/taller/internal/db"
	"github.com/erazemk/taller/internal/httpclient"
	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/revision"
)

const testJWTSecret = "test-secret"

// newUpstream fakes the service-center API. The only valid credentials are
// ana/secreto.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pUsername") != "ana" || q.Get("pPassword") != "secreto" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"EMP_CODE":"E1","EMP_NOMBRE":"Taller Norte","EMPL_CODE":"7","EMPL_NOMBRE":"Ana","USUARIO":"ana"}`)
	})
	mux.HandleFunc("GET /dashboard", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"PENDIENTES":3,"RECIBIDOS":1,"ENTREGADOS":0}]`)
	})
	mux.HandleFunc("GET /citas", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"CITCLIE_CODE":101,"CITCLIE_FECHA_RESERVA":"2024-05-01T09:00:00","CLI_NOMBRE":"Luis","VEH_PLACA":"PBA-1234"},
			{"CITCLIE_CODE":102,"CITCLIE_FECHA_RESERVA":"2024-05-02T09:00:00","CLI_NOMBRE":"Eva","VEH_PLACA":"GYE-777"}
		]`)
	})
	mux.HandleFunc("GET /articulos-mantenimiento", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"CATEGORIA":"Frenos","Articulos":[
			{"ART_CODE":"A1","ART_NOMBRE":"Pastillas","ESTADO":""},
			{"ART_CODE":"A2","ART_NOMBRE":"Discos","ESTADO":""}
		]}]`)
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)
	return upstream
}

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	upstream := newUpstream(t)
	server := newTestServer(t, upstream.URL)
	return server, login(t, server, "ana", "secreto")
}

func newTestServer(t *testing.T, upstreamURL string) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(Deps{
		DB:        database,
		JWTSecret: testJWTSecret,
		Upstream:  httpclient.New(upstreamURL, 5*time.Second),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp loginResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	if loginResp.Profile == nil || loginResp.Profile.EmpCode != "E1" {
		t.Fatalf("unexpected profile %+v", loginResp.Profile)
	}
	return loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends an authenticated request, checks the status and decodes the body
// into out when out is non-nil.
func do(t *testing.T, method, url, token string, body any, want int, out any) {
	t.Helper()
	req, _ := authRequest(method, url, token, body)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", method, url, want, resp.StatusCode, data)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding: %v", method, url, err)
		}
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadPhoto(t *testing.T, method, url, token string, data []byte, want int) photoResponse {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("image", "foto.png")
	part.Write(data)
	mw.Close()

	req, _ := http.NewRequest(method, url, &body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload: expected %d, got %d: %s", want, resp.StatusCode, data)
	}
	var pr photoResponse
	json.NewDecoder(resp.Body).Decode(&pr)
	return pr
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	body, _ = json.Marshal(map[string]string{"username": "ana"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginUpstreamFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)
	server := newTestServer(t, broken.URL)

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "secreto"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502 for upstream error, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server := newTestServer(t, "http://127.0.0.1:1")

	for _, path := range []string{"/api/revision", "/api/dashboard", "/api/revisions"} {
		resp, _ := http.Get(server.URL + path)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server, token := setupTestServer(t)

	var profile model.UserProfile
	do(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusOK, &profile)
	if profile.EmplNombre != "Ana" || profile.Usuario != "ana" {
		t.Errorf("unexpected profile %+v", profile)
	}

	do(t, "POST", server.URL+"/api/auth/logout", token, nil, http.StatusOK, nil)
	do(t, "GET", server.URL+"/api/revision", token, nil, http.StatusUnauthorized, nil)
}

func TestRevisionAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)
	base := server.URL + "/api/revision"

	var state revision.State
	do(t, "POST", base+"/categories/load", token, nil, http.StatusOK, &state)
	if len(state.Categories) != 1 || len(state.Categories[0].Items) != 2 {
		t.Fatalf("unexpected checklist %+v", state.Categories)
	}

	var applied appliedResponse
	do(t, "POST", base+"/items/A1/activate", token, nil, http.StatusOK, &applied)
	if !applied.Applied {
		t.Error("expected activate to apply")
	}
	do(t, "POST", base+"/items/A2/deactivate", token, nil, http.StatusOK, &applied)
	do(t, "POST", base+"/items/ZZ/activate", token, nil, http.StatusOK, &applied)
	if applied.Applied {
		t.Error("expected unknown code to miss")
	}

	do(t, "POST", base+"/added", token, map[string]any{"name": "Plumillas", "active": false}, http.StatusOK, nil)
	do(t, "POST", base+"/added", token, map[string]any{"name": "Tapa"}, http.StatusOK, nil)
	do(t, "DELETE", base+"/added/Tapa", token, nil, http.StatusOK, &applied)
	if !applied.Applied {
		t.Error("expected remove to apply")
	}
	do(t, "POST", base+"/added", token, map[string]any{"name": "  "}, http.StatusBadRequest, nil)

	do(t, "PUT", base+"/items/A2/photos", token, []string{"https://cdn.example.com/a.jpg"}, http.StatusOK, nil)

	do(t, "GET", base, token, nil, http.StatusOK, &state)
	if got := state.Categories[0].Items[0].State; got != model.StateActive {
		t.Errorf("expected A1 active, got %v", got)
	}
	if got := state.Categories[0].Items[1].State; got != model.StateInactive {
		t.Errorf("expected A2 inactive, got %v", got)
	}
	if len(state.AddedItems) != 1 || state.AddedItems[0].Name != "Plumillas" {
		t.Errorf("unexpected added items %+v", state.AddedItems)
	}

	var rev model.Revision
	do(t, "POST", base+"/submit", token, map[string]int{"cita": 101}, http.StatusCreated, &rev)
	if rev.ItemsTotal != 3 || rev.ItemsFailed != 2 || rev.Photos != 1 || rev.CitaCode != 101 {
		t.Errorf("unexpected revision %+v", rev)
	}

	do(t, "GET", base, token, nil, http.StatusOK, &state)
	if len(state.AddedItems) != 0 || len(state.Photos) != 0 {
		t.Error("expected container reset after submit")
	}
	if len(state.Categories) != 1 || state.Categories[0].Items[0].State != model.StateUnset {
		t.Error("expected checklist kept and unset after submit")
	}

	var list []model.Revision
	do(t, "GET", server.URL+"/api/revisions", token, nil, http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != rev.ID {
		t.Fatalf("unexpected revision list %+v", list)
	}

	var detail struct {
		ID    string         `json:"id"`
		State revision.State `json:"state"`
	}
	do(t, "GET", server.URL+"/api/revisions/"+rev.ID, token, nil, http.StatusOK, &detail)
	if len(detail.State.AddedItems) != 1 {
		t.Errorf("expected stored snapshot with 1 added item, got %+v", detail.State.AddedItems)
	}
	do(t, "GET", server.URL+"/api/revisions/nope", token, nil, http.StatusNotFound, nil)
}

func TestPhotoAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)
	photos := server.URL + "/api/revision/items/A1/photos"

	first := uploadPhoto(t, "POST", photos, token, testPNG(t, 40, 30), http.StatusCreated)
	if !first.Applied || !strings.HasPrefix(first.Image, photoPath) {
		t.Fatalf("unexpected upload response %+v", first)
	}
	second := uploadPhoto(t, "POST", photos, token, testPNG(t, 20, 20), http.StatusCreated)

	req, _ := authRequest("GET", server.URL+first.Image, token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("expected stored jpeg, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	resp.Body.Close()

	replaced := uploadPhoto(t, "PUT", photos+"/0", token, testPNG(t, 10, 10), http.StatusOK)
	if !replaced.Applied {
		t.Fatal("expected replace to apply")
	}
	do(t, "GET", server.URL+first.Image, token, nil, http.StatusNotFound, nil)

	missed := uploadPhoto(t, "PUT", photos+"/5", token, testPNG(t, 10, 10), http.StatusOK)
	if missed.Applied {
		t.Error("expected out of range replace to miss")
	}

	var state revision.State
	do(t, "GET", server.URL+"/api/revision", token, nil, http.StatusOK, &state)
	want := []model.Image{replaced.Image, second.Image}
	if got := state.Attachment("A1"); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}

	var applied appliedResponse
	do(t, "DELETE", photos+"/1", token, nil, http.StatusOK, &applied)
	do(t, "DELETE", photos+"/0", token, nil, http.StatusOK, &applied)
	do(t, "DELETE", photos+"/0", token, nil, http.StatusOK, &applied)
	if applied.Applied {
		t.Error("expected delete on empty attachment to miss")
	}
	do(t, "GET", server.URL+second.Image, token, nil, http.StatusNotFound, nil)

	do(t, "GET", server.URL+"/api/revision", token, nil, http.StatusOK, &state)
	if len(state.Photos) != 0 {
		t.Errorf("expected attachment removed, got %+v", state.Photos)
	}

	uploadPhoto(t, "POST", photos, token, []byte("not an image"), http.StatusBadRequest)
	do(t, "DELETE", photos+"/x", token, nil, http.StatusBadRequest, nil)
}

func TestDashboardAPI(t *testing.T) {
	server, token := setupTestServer(t)

	var view struct {
		Summary *model.DashboardSummary `json:"summary"`
		Groups  []struct {
			Fecha string              `json:"fecha"`
			Citas []model.Appointment `json:"citas"`
		} `json:"groups"`
		Total int    `json:"total"`
		Query string `json:"query"`
	}
	do(t, "GET", server.URL+"/api/dashboard", token, nil, http.StatusOK, &view)
	if view.Total != 0 || view.Summary != nil {
		t.Errorf("expected empty dashboard before refresh, got %+v", view)
	}

	do(t, "POST", server.URL+"/api/dashboard/refresh", token, nil, http.StatusOK, &view)
	if view.Summary == nil || view.Summary.Pendientes != 3 {
		t.Errorf("unexpected summary %+v", view.Summary)
	}
	if view.Total != 2 || len(view.Groups) != 2 {
		t.Fatalf("expected 2 appointments in 2 days, got %d in %d", view.Total, len(view.Groups))
	}
	if view.Groups[0].Citas[0].Vehiculo.Placa != "PBA-1234" {
		t.Errorf("unexpected first appointment %+v", view.Groups[0].Citas[0])
	}

	do(t, "GET", server.URL+"/api/dashboard/search?q=102", token, nil, http.StatusOK, &view)
	if view.Total != 1 || view.Query != "102" {
		t.Errorf("expected 1 match for 102, got %d", view.Total)
	}

	filters := map[string]any{"desde": "2024-05-01", "hasta": "2024-05-01", "estado": "Activo"}
	do(t, "POST", server.URL+"/api/dashboard/filters", token, filters, http.StatusOK, &view)
	if view.Total != 0 {
		t.Errorf("expected query 102 to hide the 1 May appointment, got %d", view.Total)
	}
	do(t, "GET", server.URL+"/api/dashboard/search?q=", token, nil, http.StatusOK, &view)
	if view.Total != 1 {
		t.Errorf("expected 1 appointment on 1 May, got %d", view.Total)
	}

	do(t, "POST", server.URL+"/api/dashboard/filters", token, map[string]any{"desde": "mayo"}, http.StatusBadRequest, nil)
}

func TestOrphanedPhotosAreDeleted(t *testing.T) {
	server, token := setupTestServer(t)
	base := server.URL + "/api/revision"
	photos := base + "/items/A1/photos"

	t.Run("set photos", func(t *testing.T) {
		old := uploadPhoto(t, "POST", photos, token, testPNG(t, 10, 10), http.StatusCreated)
		do(t, "PUT", photos, token, []string{"file:///x.jpg"}, http.StatusOK, nil)
		do(t, "GET", server.URL+old.Image, token, nil, http.StatusNotFound, nil)
	})

	t.Run("set photos keeping one", func(t *testing.T) {
		kept := uploadPhoto(t, "POST", photos, token, testPNG(t, 10, 10), http.StatusCreated)
		do(t, "PUT", photos, token, []string{string(kept.Image)}, http.StatusOK, nil)
		do(t, "GET", server.URL+kept.Image, token, nil, http.StatusOK, nil)
	})

	t.Run("reset", func(t *testing.T) {
		old := uploadPhoto(t, "POST", photos, token, testPNG(t, 10, 10), http.StatusCreated)
		var applied appliedResponse
		do(t, "POST", base+"/reset", token, nil, http.StatusOK, &applied)
		if !applied.Applied {
			t.Error("expected reset to apply")
		}
		do(t, "GET", server.URL+old.Image, token, nil, http.StatusNotFound, nil)
	})

	t.Run("submit keeps photos", func(t *testing.T) {
		submitted := uploadPhoto(t, "POST", photos, token, testPNG(t, 10, 10), http.StatusCreated)
		do(t, "POST", base+"/submit", token, map[string]int{"cita": 101}, http.StatusCreated, nil)
		do(t, "GET", server.URL+submitted.Image, token, nil, http.StatusOK, nil)

		do(t, "POST", base+"/reset", token, nil, http.StatusOK, nil)
		do(t, "GET", server.URL+submitted.Image, token, nil, http.StatusOK, nil)
	})

	t.Run("logout", func(t *testing.T) {
		session := login(t, server, "ana", "secreto")
		old := uploadPhoto(t, "POST", photos, session, testPNG(t, 10, 10), http.StatusCreated)
		do(t, "POST", server.URL+"/api/auth/logout", session, nil, http.StatusOK, nil)

		session = login(t, server, "ana", "secreto")
		do(t, "GET", server.URL+old.Image, session, nil, http.StatusNotFound, nil)
	})
}

func TestRevisionJSONHasNoNulls(t *testing.T) {
	server, token := setupTestServer(t)
	base := server.URL + "/api/revision"

	check := func(t *testing.T) {
		t.Helper()
		var raw map[string]json.RawMessage
		do(t, "GET", base, token, nil, http.StatusOK, &raw)
		for _, key := range []string{"articulosMantenimiento", "articulosAgregados", "articulosFotos"} {
			if got := string(raw[key]); got != "[]" {
				t.Errorf("expected %s to be [], got %s", key, got)
			}
		}
	}

	check(t)

	do(t, "POST", base+"/added", token, map[string]any{"name": "Plumillas"}, http.StatusOK, nil)
	do(t, "PUT", base+"/items/A1/photos", token, []string{"https://cdn.example.com/a.jpg"}, http.StatusOK, nil)
	do(t, "POST", base+"/reset", token, nil, http.StatusOK, nil)
	check(t)
}
