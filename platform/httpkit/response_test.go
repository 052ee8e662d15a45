package httpkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cmms_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "domain error uses its kind",
			err:        apperr.NotFound("order not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   "order not found",
		},
		{
			name:       "wrapped domain error keeps its kind",
			err:        fmt.Errorf("complete order: %w", apperr.Conflict("order already finalized")),
			wantStatus: http.StatusConflict,
			wantBody:   "order already finalized",
		},
		{
			name:       "infrastructure error maps to 500",
			err:        fmt.Errorf("complete order: %w", errors.New("connection reset by peer")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			if handled := HandleError(c, tt.err); !handled {
				t.Fatal("HandleError returned false for non-nil error")
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body.Error != tt.wantBody {
				t.Errorf("error message = %q, want %q", body.Error, tt.wantBody)
			}
		})
	}
}

func TestHandleErrorHidesInfrastructureDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	HandleError(c, fmt.Errorf("complete order: %w", errors.New("connection reset by peer")))

	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Errorf("response body leaks driver detail: %s", rec.Body.String())
	}
}

func TestHandleErrorIgnoresNil(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	if HandleError(c, nil) {
		t.Fatal("HandleError handled a nil error")
	}
}
