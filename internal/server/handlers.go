package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/talkingphoto-ai/ingest/internal/pipeline"
	"github.com/talkingphoto-ai/ingest/internal/version"
)

// healthHandler returns service health.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ver, _, _ := version.Info()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ver,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// tipsHandler returns the static troubleshooting tip tables.
func (s *Server) tipsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	byKind := map[string][]string{}
	for _, kind := range []pipeline.ErrorKind{
		pipeline.KindFileTooLarge,
		pipeline.KindUnsupportedFormat,
		pipeline.KindImageTooSmall,
		pipeline.KindProcessingFailure,
	} {
		byKind[string(kind)] = pipeline.TroubleshootingTips(kind)
	}
	writeJSON(w, http.StatusOK, TipsResponse{
		General: pipeline.GeneralTips(),
		ByKind:  byKind,
	})
}

// processHandler accepts a multipart upload and returns the ingestion
// outcome as JSON.
func (s *Server) processHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	blob, ok := s.parseUpload(w, r)
	if !ok {
		processRequestsTotal.WithLabelValues("http", "error").Inc()
		return // error already written
	}

	start := time.Now()
	res, err := s.pipeline.Process(blob)
	duration := time.Since(start)
	processDuration.WithLabelValues("http").Observe(duration.Seconds())

	if err != nil {
		processRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeFailure(w, err, duration)
		return
	}

	processRequestsTotal.WithLabelValues("http", "success").Inc()
	facesDetected.Observe(float64(res.Diagnostics.Face.FaceCount))
	s.writeSuccess(w, res, duration)
}

// parseUpload extracts the uploaded file into a pipeline blob. On failure an
// error response has already been written and ok is false.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (pipeline.UploadedBlob, bool) {
	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return pipeline.UploadedBlob{}, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return pipeline.UploadedBlob{}, false
	}
	defer func() { _ = file.Close() }()

	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return pipeline.UploadedBlob{}, false
	}

	return pipeline.UploadedBlob{
		Data:     data,
		Filename: header.Filename,
		Size:     header.Size,
	}, true
}

// writeSuccess sends the successful outcome, optionally attaching a base64
// JPEG preview of the normalized image.
func (s *Server) writeSuccess(w http.ResponseWriter, res *pipeline.Result, duration time.Duration) {
	d := res.Diagnostics
	resp := ProcessResponse{
		Success:        true,
		Width:          d.Width,
		Height:         d.Height,
		Format:         d.Format,
		OriginalSizeMB: d.OriginalSizeMB,
		FinalSizeMB:    d.FinalSizeMB,
		Face:           faceInfo(d),
		ProcessingMs:   duration.Milliseconds(),
	}

	if s.previewEnabled {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, res.Image, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
			slog.Warn("preview encode failed", "error", err)
		} else {
			resp.PreviewJPEG = base64.StdEncoding.EncodeToString(buf.Bytes())
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeFailure maps a classified pipeline error onto an HTTP status and
// attaches the matching troubleshooting tips.
func (s *Server) writeFailure(w http.ResponseWriter, err error, duration time.Duration) {
	var perr *pipeline.Error
	if !errors.As(err, &perr) {
		// The pipeline contract guarantees classified errors; treat anything
		// else as a processing failure.
		perr = &pipeline.Error{Kind: pipeline.KindProcessingFailure, Message: err.Error()}
	}
	processFailuresTotal.WithLabelValues(string(perr.Kind)).Inc()

	status := http.StatusInternalServerError
	switch perr.Kind {
	case pipeline.KindFileTooLarge:
		status = http.StatusRequestEntityTooLarge
	case pipeline.KindUnsupportedFormat:
		status = http.StatusUnsupportedMediaType
	case pipeline.KindImageTooSmall:
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, ProcessResponse{
		Success:      false,
		Error:        perr.Message,
		ErrorType:    string(perr.Kind),
		Tips:         pipeline.TroubleshootingTips(perr.Kind),
		ProcessingMs: duration.Milliseconds(),
	})
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ProcessResponse{
		Success:   false,
		Error:     message,
		ErrorType: string(pipeline.KindProcessingFailure),
	})
}

func faceInfo(d pipeline.Diagnostics) *FaceInfo {
	info := &FaceInfo{
		Detected:   d.Face.FaceDetected,
		Count:      d.Face.FaceCount,
		Confidence: d.Face.Confidence,
	}
	for _, box := range d.Face.Boxes {
		info.Boxes = append(info.Boxes, [4]int{box.Min.X, box.Min.Y, box.Dx(), box.Dy()})
	}
	return info
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
