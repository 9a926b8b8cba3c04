package v1

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"cinescope-backend/internal/domain"
	"cinescope-backend/internal/usecase"
	"cinescope-backend/pkg/utils"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// creativeForm is a parsed multipart submission. Close releases the file
// and any temp files the form spilled to disk.
type creativeForm struct {
	input usecase.SubmitAdRequestInput
	file  multipart.File
	form  *multipart.Form
}

func (f *creativeForm) Close() {
	if f.file != nil {
		f.file.Close()
	}
	if f.form != nil {
		f.form.RemoveAll()
	}
}

func (h *AdRequestHandler) parseCreativeForm(w http.ResponseWriter, r *http.Request) (*creativeForm, error) {
	// Leave room for the text fields on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, domain.NewValidationError("imageFile", "file too large or invalid form data")
	}

	form := &creativeForm{
		form: r.MultipartForm,
		input: usecase.SubmitAdRequestInput{
			ImageURL:  r.FormValue("imageUrl"),
			LinkURL:   r.FormValue("linkUrl"),
			StartDate: r.FormValue("startDate"),
			EndDate:   r.FormValue("endDate"),
		},
	}

	file, header, err := r.FormFile("imageFile")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		form.Close()
		return nil, domain.NewValidationError("imageFile", "invalid file")
	}
	form.file = file

	if _, ok := utils.AllowedCreativeTypes[header.Header.Get("Content-Type")]; !ok {
		form.Close()
		return nil, domain.NewValidationError("imageFile", "invalid file type, allowed: JPEG, PNG, WebP, GIF")
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		form.Close()
		return nil, domain.NewValidationError("imageFile", "invalid file extension")
	}

	form.input.ImageFile = file
	return form, nil
}
