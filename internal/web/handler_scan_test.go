package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/snapcal/internal/domain"
)

func TestReadImageJSON(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		body    string
		want    []byte
		wantErr string
	}{
		{name: "plain base64", body: `{"image":"` + encoded + `"}`, want: raw},
		{name: "data URL", body: `{"image":"data:image/jpeg;base64,` + encoded + `"}`, want: raw},
		{name: "missing image", body: `{}`, wantErr: "image is required"},
		{name: "not base64", body: `{"image":"***"}`, wantErr: "image is not valid base64"},
		{name: "not JSON", body: `image=abc`, wantErr: "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/scans", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")

			got, err := readImage(r)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadImageMultipart(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("image", "meal.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/scans", body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	got, err := readImage(r)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(got))
}

func TestReadImageMultipartMissingField(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("note", "lunch"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/scans", body)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	_, err := readImage(r)
	assert.EqualError(t, err, "image file required")
}

func TestNewScanResponseOmitsIDForAnonymousScans(t *testing.T) {
	resp := newScanResponse(&domain.ScanRecord{Result: domain.ScanResult{Items: []domain.FoodNutrition{}, TotalCalories: 10}})

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"totalCalories":10,"totalProtein":0,"totalCarbs":0,"totalFat":0}`, string(data))
}
