package handler

import (
	"errors"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
)

// multipartMemory is how much of a multipart upload is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// CommentRequest is the body of POST /trips/{id}/comments.
type CommentRequest struct {
	UserName string `json:"userName"`
	Comment  string `json:"comment"`
}

// AttachmentsRequest is the JSON body of POST /trips/{id}/attachments,
// used when the file bytes live elsewhere and only metadata is recorded.
type AttachmentsRequest struct {
	Attachments []service.AttachmentMeta `json:"attachments"`
}

// addComment handles POST /trips/{id}/comments.
func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var body CommentRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}

	author := firstNonEmpty(body.UserName, r.Header.Get(HeaderUserName))
	c, err := s.trips.AddComment(r.Context(), id, author, body.Comment)
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, commentToResponse(c))
}

// addAttachments handles POST /trips/{id}/attachments.
// A multipart/form-data body stores the uploaded files (form field "files");
// a JSON body records metadata only.
func (s *Server) addAttachments(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		s.uploadAttachments(w, r, id)
		return
	}

	var body AttachmentsRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}
	atts, err := s.trips.AddAttachments(r.Context(), id, body.Attachments)
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	s.writeAttachments(w, r, atts)
}

// uploadAttachments parses the multipart form and hands every file to the service.
func (s *Server) uploadAttachments(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.WarnContext(r.Context(), "failed to remove multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File["files"]
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.writeDecodeError(w, r, err)
			return
		}
		defer f.Close()
		uploads = append(uploads, service.Upload{
			Filename: fh.Filename,
			MimeType: declaredType(fh),
			Body:     f,
		})
	}

	atts, err := s.trips.UploadAttachments(r.Context(), id, uploads)
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	s.writeAttachments(w, r, atts)
}

func (s *Server) writeAttachments(w http.ResponseWriter, r *http.Request, atts []domain.Attachment) {
	out := make([]AttachmentResponse, 0, len(atts))
	for _, a := range atts {
		out = append(out, attachmentToResponse(a))
	}
	s.writeJSON(w, r, http.StatusCreated, out)
}

// declaredType returns the part's Content-Type unless it is the generic
// octet-stream most clients send, in which case the service sniffs.
func declaredType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err != nil || mt == "application/octet-stream" {
		return ""
	}
	return ct
}

// downloadAttachment handles GET /trips/{id}/attachments/{attachmentID}.
func (s *Server) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	attID, ok := s.pathID(w, r, "attachmentID")
	if !ok {
		return
	}

	trip, err := s.trips.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	var att *domain.Attachment
	for i := range trip.Attachments {
		if trip.Attachments[i].ID == attID {
			att = &trip.Attachments[i]
			break
		}
	}
	if att == nil {
		s.writeError(w, r, http.StatusNotFound, "not_found", "attachment not found")
		return
	}
	if att.StorageKey == "" || s.blobs == nil {
		s.writeError(w, r, http.StatusNotFound, "not_found", "attachment content is not stored")
		return
	}

	f, err := s.blobs.Open(r.Context(), att.StorageKey)
	if errors.Is(err, fs.ErrNotExist) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "attachment content is missing")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err, tripNotFound)
		return
	}
	defer f.Close()

	if att.MimeType != "" {
		w.Header().Set("Content-Type", att.MimeType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, att.Filename, att.At, f)
}
