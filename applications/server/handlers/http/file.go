package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"github.com/donmikel/uploadguard/applications/server"
	"github.com/donmikel/uploadguard/applications/server/config"
	"github.com/donmikel/uploadguard/applications/server/domain"
)

const (
	multipartMaxMemory = 32 << 20
	multipartFileField = "file"
)

type uploadResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
	Reason    domain.Reason `json:"reason,omitempty"`
	Path      string        `json:"path,omitempty"`
	PublicURL string        `json:"publicUrl,omitempty"`
}

type dataURLRequest struct {
	File     string `json:"file"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

func NewRouter(conf config.Api, svc server.FileService, metrics http.Handler, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/upload", UploadHandler(svc, conf.MaxUploadBytes, logger)).Methods(http.MethodPost)
	r.HandleFunc("/uploads/{name}", GetFileHandler(svc, logger)).Methods(http.MethodGet, http.MethodHead)
	if conf.MetricsPath != "" && metrics != nil {
		r.Handle(conf.MetricsPath, metrics).Methods(http.MethodGet)
	}
	return r
}

// UploadHandler turns either transport into a domain.Envelope and hands it to
// the service. No policy decision is taken here.
func UploadHandler(svc server.FileService, maxUploadBytes int64, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		envelope, err := readEnvelope(r)
		if err != nil {
			level.Warn(logger).Log("msg", "can't read upload envelope", "err", err)
			reason := domain.ReasonMalformedEnvelope
			status := http.StatusBadRequest
			if errors.Is(err, domain.ErrPayloadTooLarge) {
				reason = domain.ReasonPayloadTooLarge
				status = http.StatusRequestEntityTooLarge
			}
			writeErr(w, reason, status, logger)
			return
		}

		decision, err := svc.HandleUpload(r.Context(), envelope)
		if err != nil {
			writeErr(w, domain.ReasonStorageIO, http.StatusInternalServerError, logger)
			return
		}

		if !decision.Accepted {
			writeErr(w, decision.Reason, http.StatusBadRequest, logger)
			return
		}

		writeJSON(w, http.StatusOK, uploadResponse{
			Success:   true,
			Message:   decision.Reason.Message(),
			Path:      decision.StoredName,
			PublicURL: decision.PublicURL,
		}, logger)
	}
}

func GetFileHandler(svc server.FileService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		file, err := svc.GetFile(r.Context(), name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Not found", http.StatusNotFound)
				return
			}
			level.Error(logger).Log("msg", "GetFile error", "name", name, "err", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		h := w.Header()
		h.Set("Content-Type", file.ContentType)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", "default-src 'none'; sandbox")

		http.ServeContent(w, r, file.Name, file.ModTime, bytes.NewReader(file.Data))
	}
}

func readEnvelope(r *http.Request) (domain.Envelope, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err)
	}

	switch mediaType {
	case "multipart/form-data":
		return readMultipart(r)
	case "application/json":
		return readDataURL(r)
	default:
		return domain.Envelope{}, fmt.Errorf("%w: unsupported content type %q", domain.ErrMalformedEnvelope, mediaType)
	}
}

func readMultipart(r *http.Request) (domain.Envelope, error) {
	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		return domain.Envelope{}, bodyErr(err)
	}

	file, header, err := r.FormFile(multipartFileField)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: no %q field: %v", domain.ErrMalformedEnvelope, multipartFileField, err)
	}
	defer file.Close()

	// The whole part is read before anything is classified.
	data, err := io.ReadAll(file)
	if err != nil {
		return domain.Envelope{}, bodyErr(err)
	}

	return domain.NewMultipartEnvelope(data, header.Filename), nil
}

func readDataURL(r *http.Request) (domain.Envelope, error) {
	var req dataURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.Envelope{}, bodyErr(err)
	}

	return domain.NewDataURLEnvelope(req.File, req.Name, req.MimeType)
}

func bodyErr(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", domain.ErrPayloadTooLarge, maxErr.Limit)
	}
	if errors.Is(err, multipart.ErrMessageTooLarge) {
		return fmt.Errorf("%w: %v", domain.ErrPayloadTooLarge, err)
	}

	return fmt.Errorf("%w: %v", domain.ErrMalformedEnvelope, err)
}

func writeErr(w http.ResponseWriter, reason domain.Reason, status int, logger log.Logger) {
	writeJSON(w, status, uploadResponse{
		Error:  reason.Message(),
		Reason: reason,
	}, logger)
}

func writeJSON(w http.ResponseWriter, status int, resp uploadResponse, logger log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		level.Error(logger).Log("msg", "can't write response", "err", err)
	}
}
