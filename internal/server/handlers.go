package server

import (
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/delivery"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/wallpaper"
)

//go:embed static/index.html
var static embed.FS

const (
	msgInvalidJSON     = "Invalid JSON body"
	msgMissingAPIKey   = "Last.fm API key is not configured"
	msgNotFound        = "File not found or expired"
	msgUnexpectedError = "An unexpected error occurred while generating wallpapers"
)

type ValidateRequest struct {
	Username string `json:"username"`
}

type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type GenerateRequest struct {
	Username string `json:"username"`
	Period   string `json:"period,omitempty"`
	Limit    *int   `json:"limit,omitempty"`
}

type GenerateResponse struct {
	Success           bool   `json:"success"`
	Count             int    `json:"count"`
	Failed            int    `json:"failed"`
	DownloadURL       string `json:"download_url"`
	Token             string `json:"token"`
	ValidationMessage string `json:"validation_message"`
}

type HealthResponse struct {
	Status                 string `json:"status"`
	APIKeyConfigured       bool   `json:"api_key_configured"`
	SharedSecretConfigured bool   `json:"shared_secret_configured"`
	Archives               int    `json:"archives"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

// inputMessage turns a lowercase Go error into a sentence for API clients.
func inputMessage(err error) string {
	msg := err.Error()
	first, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(first)) + msg[size:]
}

// HandleIndex serves the embedded single page form.
func HandleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := static.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "page not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}
}

// HandleValidate checks a username against Last.fm.
func HandleValidate(settings *config.Settings, validator Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ValidateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ValidateResponse{Message: msgInvalidJSON})
			return
		}

		username, err := lastfm.NormalizeUsername(req.Username)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ValidateResponse{Message: inputMessage(err)})
			return
		}

		if !settings.HasAPIKey() {
			logrus.Error("Validation requested but LASTFM_API_KEY is not set")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ValidateResponse{Message: msgMissingAPIKey})
			return
		}

		v := validator.Validate(r.Context(), username)
		render.JSON(w, r, ValidateResponse{Valid: v.Valid, Message: v.Message})
	}
}

// HandleGenerate validates the request, runs a generation and registers the
// resulting archive for download.
func HandleGenerate(settings *config.Settings, registry *delivery.Registry, generate GenerateFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			renderError(w, r, http.StatusBadRequest, msgInvalidJSON)
			return
		}

		username, err := lastfm.NormalizeUsername(req.Username)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, inputMessage(err))
			return
		}

		periodInput := req.Period
		if periodInput == "" {
			periodInput = settings.DefaultPeriod
		}
		period, err := lastfm.ParsePeriod(periodInput)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, inputMessage(err))
			return
		}

		limit := settings.DefaultLimit
		if req.Limit != nil {
			limit = *req.Limit
		}
		limit = lastfm.ClampLimit(limit, settings.MaxLimit)

		if !settings.HasAPIKey() {
			logrus.Error("Generation requested but LASTFM_API_KEY is not set")
			renderError(w, r, http.StatusInternalServerError, msgMissingAPIKey)
			return
		}

		log := logrus.WithFields(logrus.Fields{
			"username": username,
			"period":   period,
			"limit":    limit,
		})
		log.Info("Generating wallpapers")

		res, err := generate(r.Context(), username, period, limit)
		if err != nil {
			var verr *wallpaper.ValidationError
			switch {
			case errors.As(err, &verr):
				renderError(w, r, http.StatusBadRequest, verr.Message)
			case errors.Is(err, wallpaper.ErrNoWallpapers):
				renderError(w, r, http.StatusBadRequest, wallpaper.NoWallpapersMessage)
			default:
				log.WithField("error", err).Error("Generation failed")
				renderError(w, r, http.StatusInternalServerError, msgUnexpectedError)
			}
			return
		}

		token := registry.Register(username, res.Archive)
		render.JSON(w, r, GenerateResponse{
			Success:           true,
			Count:             res.Archive.Files,
			Failed:            res.Failed,
			DownloadURL:       "/download/" + token,
			Token:             token,
			ValidationMessage: res.Validation.Message,
		})
	}
}

// HandleDownload streams an archive by token or username. The first
// complete, non-range download schedules the archive for deletion.
func HandleDownload(registry *delivery.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(chi.URLParam(r, "key"))

		entry, err := registry.Lookup(key)
		if err != nil {
			renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}

		f, err := os.Open(entry.Archive.Path)
		if err != nil {
			logrus.WithFields(logrus.Fields{"path": entry.Archive.Path, "error": err}).Warn("Archive vanished before download")
			renderError(w, r, http.StatusNotFound, msgNotFound)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, entry.Archive.Name))
		http.ServeContent(w, r, entry.Archive.Name, entry.Archive.CreatedAt, f)

		// Partial and aborted transfers leave the archive in place.
		if r.Header.Get("Range") != "" || r.Context().Err() != nil {
			return
		}
		registry.MarkServed(entry.Token)
		logrus.WithFields(logrus.Fields{"username": entry.Username, "token": entry.Token}).Info("Archive downloaded")
	}
}

// HandleHealth reports whether the server is able to reach Last.fm.
func HandleHealth(settings *config.Settings, registry *delivery.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:                 "healthy",
			APIKeyConfigured:       settings.HasAPIKey(),
			SharedSecretConfigured: settings.HasSharedSecret(),
			Archives:               registry.Len(),
		}
		if !resp.APIKeyConfigured {
			resp.Status = "degraded"
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, resp)
	}
}
