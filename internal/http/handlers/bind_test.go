package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/kinerjahub/internal/domain/report"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func bindRouter[T any]() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/bind", func(ctx *gin.Context) {
		var req T
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func postBind(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, handlers.Envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handlers.Envelope
	if w.Code != http.StatusCreated {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func fieldMessages(resp handlers.Envelope) map[string]string {
	out := make(map[string]string, len(resp.Errors))
	for _, fe := range resp.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	r := bindRouter[report.CreateRequest]()

	w, resp := postBind(t, r, `{"tanggal":"2024-05-01","target":-1,"kategori":[{"kategoriKinerjaId":0}]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
	if resp.Success || resp.Code != "validation_failed" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}

	found := fieldMessages(resp)
	for _, field := range []string{"target", "realisasi", "unitKerjaId", "kategori[0].kategoriKinerjaId"} {
		msg, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Errors)
		}
		if msg == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	r := bindRouter[report.CreateRequest]()

	w, resp := postBind(t, r, `{"tanggal":"2024-05-01","target":"ten","realisasi":1,"unitKerjaId":1,"kategori":[]}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "target" {
		t.Fatalf("expected a single error on target, got %+v", resp.Errors)
	}
}

func TestBindJSON_MalformedAndEmptyBodies(t *testing.T) {
	r := bindRouter[user.LoginRequest]()

	for _, body := range []string{`{"email":`, ``} {
		w, resp := postBind(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: got %d", body, w.Code)
		}
		if _, ok := fieldMessages(resp)["body"]; !ok {
			t.Fatalf("body %q: expected an error on body, got %+v", body, resp.Errors)
		}
	}
}

func TestBindJSON_StrongPassword(t *testing.T) {
	r := bindRouter[user.RegisterRequest]()

	tests := []struct {
		password string
		ok       bool
	}{
		{"Rahasia123", true},
		{"rahasia123", false},
		{"RahasiaSekali", false},
		{"Rh1", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			body := `{"name":"Budi","email":"budi@example.com","password":"` + tt.password + `"}`
			w, resp := postBind(t, r, body)

			if tt.ok {
				if w.Code != http.StatusCreated {
					t.Fatalf("expected acceptance, got %d %s", w.Code, w.Body.String())
				}
				return
			}
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if _, ok := fieldMessages(resp)["password"]; !ok {
				t.Fatalf("expected password error, got %+v", resp.Errors)
			}
		})
	}
}
