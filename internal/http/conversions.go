package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jmehdipour/contact-gateway/internal/cache"
	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/jmehdipour/contact-gateway/internal/notify"
	"github.com/jmehdipour/contact-gateway/internal/rowsource"
	"github.com/jmehdipour/contact-gateway/internal/service/convert"
	"github.com/jmehdipour/contact-gateway/internal/vcard"
	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Converter is the conversion service as seen by the handlers.
type Converter interface {
	Convert(ctx context.Context, fileName string, r io.Reader) (convert.Outcome, error)
	Lookup(ctx context.Context, runID string) (cache.Entry, error)
	NotifyMissing(ctx context.Context, runID string) error
}

type conversionResp struct {
	RunID         string          `json:"run_id"`
	FileName      string          `json:"file_name"`
	CleanPath     model.CleanPath `json:"clean_path"`
	RawRows       int             `json:"raw_rows"`
	Exported      int             `json:"exported"`
	UpstreamError string          `json:"upstream_error,omitempty"`
	Summary       model.Summary   `json:"summary"`
	VCardURL      string          `json:"vcard_url"`
}

func createConversionHandler(svc Converter, maxBytes int64, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing file"})
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
		}
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
			return c.JSON(http.StatusUnsupportedMediaType, map[string]string{"error": "expected an .xlsx file"})
		}

		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable upload"})
		}
		defer f.Close()

		out, err := svc.Convert(c.Request().Context(), filepath.Base(fh.Filename), f)
		if err != nil {
			var pe *rowsource.ParseError
			if errors.As(err, &pe) {
				return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": pe.Error()})
			}
			log.Error("conversion failed", zap.String("file", fh.Filename), zap.Error(err))

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "conversion failed"})
		}

		resp := conversionResp{
			RunID:     out.Run.ID,
			FileName:  out.Run.FileName,
			CleanPath: out.Run.CleanPath,
			RawRows:   out.Run.TotalRows,
			Exported:  len(out.Export),
			Summary:   out.Summary,
			VCardURL:  "/v1/conversions/" + out.Run.ID + "/" + vcard.DefaultFileName,
		}
		if out.UpstreamErr != nil {
			resp.UpstreamError = out.UpstreamErr.Error()
		}

		return c.JSON(http.StatusCreated, resp)
	}
}

func downloadVCardHandler(svc Converter, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		e, err := svc.Lookup(c.Request().Context(), c.Param("id"))
		if err != nil {
			return lookupError(c, log, err)
		}

		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+vcard.DefaultFileName+`"`)
		return c.Blob(http.StatusOK, vcard.MIMEType, []byte(e.VCard))
	}
}

func notifyMissingHandler(svc Converter, okText string, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		runID := c.Param("id")
		err := svc.NotifyMissing(c.Request().Context(), runID)

		switch {
		case errors.Is(err, convert.ErrInvalidRunID), errors.Is(err, convert.ErrRunNotFound):
			return lookupError(c, log, err)
		case errors.Is(err, convert.ErrNotifyDisabled):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		case errors.Is(err, convert.ErrNothingToNotify):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}

		ok, msg := notify.Outcome(err, okText)
		if !ok {
			log.Error("notify missing failed", zap.String("run_id", runID), zap.Error(err))

			return c.JSON(http.StatusBadGateway, map[string]any{"ok": false, "message": msg})
		}
		return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": msg})
	}
}

func lookupError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, convert.ErrInvalidRunID):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid run id"})
	case errors.Is(err, convert.ErrRunNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	default:
		log.Error("run lookup failed", zap.String("run_id", c.Param("id")), zap.Error(err))

		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
	}
}
