package api

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/internal/workflow"
	"github.com/JaimeStill/formscout/pkg/formatting"
	"github.com/JaimeStill/formscout/pkg/handlers"
	"github.com/JaimeStill/formscout/pkg/routes"
)

var (
	errArtifactNotFound = errors.New("artifact not found")
	errInvalidFormID    = errors.New("invalid form id")
)

// artifact describes one file a detection run left under format_data.
type artifact struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"size_bytes"`
	Size       string    `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// artifactsHandler serves the per-form run artifacts from the work dir.
type artifactsHandler struct {
	workDir string
	logger  *slog.Logger
}

func newArtifactsHandler(workDir string, logger *slog.Logger) *artifactsHandler {
	return &artifactsHandler{
		workDir: workDir,
		logger:  logger.With("handler", "artifacts"),
	}
}

func (h *artifactsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/artifacts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{formId}", Handler: h.list},
			{Method: "GET", Pattern: "/{formId}/{name...}", Handler: h.download},
		},
	}
}

func (h *artifactsHandler) dataDir(r *http.Request) (string, error) {
	id, err := uuid.Parse(r.PathValue("formId"))
	if err != nil {
		return "", errInvalidFormID
	}
	return workflow.DataDir(filepath.Join(h.workDir, id.String())), nil
}

func (h *artifactsHandler) list(w http.ResponseWriter, r *http.Request) {
	dir, err := h.dataDir(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	items := []artifact{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		items = append(items, artifact{
			Name:       filepath.ToSlash(rel),
			SizeBytes:  info.Size(),
			Size:       formatting.FormatBytes(info.Size(), 1),
			ModifiedAt: info.ModTime().UTC(),
		})
		return nil
	})

	if errors.Is(err, fs.ErrNotExist) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, errArtifactNotFound)
		return
	}
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func (h *artifactsHandler) download(w http.ResponseWriter, r *http.Request) {
	dir, err := h.dataDir(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, errArtifactNotFound)
		return
	}
	defer root.Close()

	name := r.PathValue("name")
	f, err := root.Open(filepath.FromSlash(name))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("%w: %s", errArtifactNotFound, name))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("%w: %s", errArtifactNotFound, name))
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(name)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
