package ui

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"fininsight/app"
	"fininsight/internal/errors"
	"fininsight/internal/report"
	"fininsight/ui/middleware"

	"github.com/gin-gonic/gin"
)

const (
	uploadCookie    = "uploaded_filename"
	tooLargeMessage = "File is too large! Please upload a file smaller than 500 MB."
	sampledMessage  = "Full file could not be loaded into memory. Analysis performed on a 100k-row sample."
)

type uploadPage struct {
	Messages         []string
	Message          string
	UploadedFilename string
}

type resultsPage struct {
	Messages []string
	Report   *report.Report
}

// handleIndex renders the upload page
func (s *Server) handleIndex(c *gin.Context) {
	uploaded, _ := c.Cookie(uploadCookie)
	s.renderTemplate(c, http.StatusOK, "upload.html", uploadPage{
		Messages:         takeFlashes(c),
		UploadedFilename: uploaded,
	})
}

// handleUploadForm dispatches the two buttons of the upload form
func (s *Server) handleUploadForm(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(s.router.MaxMultipartMemory); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		if middleware.IsTooLarge(err) {
			c.String(http.StatusRequestEntityTooLarge, tooLargeMessage)
			return
		}
		s.logger.Warn("failed to parse upload form: %v", err)
	}

	switch c.PostForm("action") {
	case "upload":
		s.handleUpload(c)
	case "analyze":
		if uploaded, _ := c.Cookie(uploadCookie); uploaded == "" {
			flash(c, "No file uploaded yet. Please upload a CSV first.")
			c.Redirect(http.StatusSeeOther, "/")
			return
		}
		c.Redirect(http.StatusSeeOther, "/results")
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		flash(c, "No file part")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if header.Filename == "" {
		flash(c, "No selected file")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	src, err := header.Open()
	if err != nil {
		s.logger.Error("failed to open uploaded file %s: %v", header.Filename, err)
		flash(c, "Failed to save upload. Please try again.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	defer src.Close()

	path, err := s.storage.Store(c.Request.Context(), src, header.Filename)
	switch {
	case errors.HasCode(err, errors.CodeInvalidInput):
		flash(c, "Allowed file types: csv")
		c.Redirect(http.StatusSeeOther, "/")
		return
	case errors.HasCode(err, errors.CodeFileTooLarge):
		c.String(http.StatusRequestEntityTooLarge, tooLargeMessage)
		return
	case err != nil:
		s.logger.Error("failed to store upload %s: %v", header.Filename, err)
		flash(c, "Failed to save upload. Please try again.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	basename := filepath.Base(path)
	setCookie(c, uploadCookie, basename, 0)

	size, _ := s.storage.GetFileSize(path)
	sizeMB := float64(size) / (1024 * 1024)
	s.logger.Info("saved upload to %s (%.2f MB)", path, sizeMB)

	s.renderTemplate(c, http.StatusOK, "upload.html", uploadPage{
		Messages:         takeFlashes(c),
		Message:          fmt.Sprintf("Uploaded %s (%.2f MB)", basename, sizeMB),
		UploadedFilename: basename,
	})
}

// handleResults analyzes the uploaded file and renders the report
func (s *Server) handleResults(c *gin.Context) {
	uploaded, _ := c.Cookie(uploadCookie)
	if uploaded == "" {
		flash(c, "No file available for analysis. Please upload a CSV first.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	path := s.storage.Resolve(uploaded)
	if ok, err := s.storage.Exists(c.Request.Context(), path); err != nil || !ok {
		flash(c, "Uploaded file missing on server. Please re-upload.")
		setCookie(c, uploadCookie, "", -1)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	r, err := s.service.Analyze(c.Request.Context(), app.AnalysisRequest{
		Path:   path,
		Prefix: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	})
	if err != nil {
		flash(c, fmt.Sprintf("Failed to read file for analysis: %v", err))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	messages := takeFlashes(c)
	if r.Degraded() {
		messages = append(messages, sampledMessage)
	}
	s.renderTemplate(c, http.StatusOK, "results.html", resultsPage{Messages: messages, Report: r})
}
