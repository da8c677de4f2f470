package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/photostore"
	"github.com/vbonduro/snapcal/internal/scan"
	"github.com/vbonduro/snapcal/internal/service"
	"github.com/vbonduro/snapcal/internal/vision"
)

const maxPhotoSize = 20 * 1024 * 1024 // 20 MB

// scanResponse is a scan result as returned to clients. ID and CreatedAt are
// set only for logged scans.
type scanResponse struct {
	ID        string     `json:"id,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	domain.ScanResult
}

func newScanResponse(rec *domain.ScanRecord) scanResponse {
	resp := scanResponse{ID: rec.ID, ScanResult: rec.Result}
	if rec.ID != "" {
		created := rec.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

type scanJSONRequest struct {
	Image string `json:"image"`
}

// readImage accepts either a multipart form with an "image" file or a JSON
// body {"image": "<base64>"}; the base64 may carry a data URL prefix.
func readImage(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
			return nil, errors.New("failed to parse form")
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errors.New("image file required")
		}
		defer closeWithLog(file, "upload file", slog.Default())

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, errors.New("failed to read file")
		}
		return data, nil
	}

	var req scanJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	encoded := strings.TrimSpace(req.Image)
	if strings.HasPrefix(encoded, "data:") {
		if _, after, ok := strings.Cut(encoded, ","); ok {
			encoded = after
		}
	}
	if encoded == "" {
		return nil, errors.New("image is required")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("image is not valid base64")
	}
	return data, nil
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize*2)

	imageData, err := readImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !vision.IsJPEG(imageData) {
		writeError(w, http.StatusBadRequest, "unsupported image format, JPEG required")
		return
	}

	rec, err := s.scans.ScanPhoto(r.Context(), userID(r), imageData, vision.ImageMIMEType)
	if err != nil {
		var scanErr *scan.Error
		switch {
		case errors.As(err, &scanErr) && scanErr.Kind == scan.KindEmpty:
			writeError(w, http.StatusUnprocessableEntity, scanErr.Message)
		case errors.As(err, &scanErr):
			writeError(w, http.StatusBadGateway, scanErr.Message)
		default:
			s.logger.Error("scan photo failed", "error", err)
			writeError(w, http.StatusInternalServerError, scan.MessageGeneric)
		}
		return
	}

	writeJSON(w, http.StatusOK, newScanResponse(rec))
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := s.scans.ListScans(r.Context(), userID(r), limit)
	if err != nil {
		s.logger.Error("list scans failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}

	out := make([]scanResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, newScanResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.scans.GetScan(r.Context(), userID(r), r.PathValue("id"))
	if errors.Is(err, service.ErrScanNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		s.logger.Error("get scan failed", "scan_id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get scan")
		return
	}
	writeJSON(w, http.StatusOK, newScanResponse(rec))
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	err := s.scans.DeleteScan(r.Context(), userID(r), r.PathValue("id"))
	if errors.Is(err, service.ErrScanNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		s.logger.Error("delete scan failed", "scan_id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete scan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetScanPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	reader, mimeType, err := s.scans.GetScanPhoto(r.Context(), userID(r), id)
	if errors.Is(err, service.ErrScanNotFound) || errors.Is(err, photostore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		s.logger.Error("get scan photo failed", "scan_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "scan_id", id, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
