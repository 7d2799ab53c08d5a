package ui

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal/charts"
	apperrors "goeda/internal/errors"

	"github.com/gin-gonic/gin"
)

// multipartOverhead covers boundaries and part headers around the file.
const multipartOverhead = 64 << 10

// readUpload pulls the "file" form field into memory. The request body is
// capped before the multipart form is parsed, so an oversized upload is
// rejected after at most limit+overhead bytes.
func (s *Server) readUpload(c *gin.Context) (dataset.Upload, error) {
	limit := s.options.MaxUploadBytes
	if c.Request.ContentLength > limit+multipartOverhead {
		return dataset.Upload{}, tooLarge(limit)
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), strings.Contains(err.Error(), "request body too large"):
			return dataset.Upload{}, tooLarge(limit)
		case errors.Is(err, http.ErrMissingFile):
			return dataset.Upload{}, apperrors.InvalidInput("Please choose a CSV or Excel file to upload.")
		}
		return dataset.Upload{}, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	content, err := readPart(header, limit+1)
	if err != nil {
		return dataset.Upload{}, apperrors.Wrap(err, "failed to read upload")
	}
	if int64(len(content)) > limit {
		return dataset.Upload{}, tooLarge(limit)
	}
	return dataset.Upload{Filename: header.Filename, Content: content}, nil
}

func tooLarge(limit int64) error {
	return apperrors.TooLarge(fmt.Sprintf("File is too large: the limit is %d MB.", limit>>20))
}

func readPart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

func datasetID(c *gin.Context) (core.ID, error) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		return "", apperrors.NotFound("dataset")
	}
	return id, nil
}

// chartRequest reads chart selections from the query string. A multi-select
// key that is present but carries only empty values means an explicit empty
// selection, not the default.
func chartRequest(c *gin.Context, typeKey string) charts.Request {
	raw := c.Query(typeKey)
	typ, ok := charts.ParseType(raw)
	if !ok {
		typ = charts.Type(raw)
	}
	return charts.Request{
		Type:   typ,
		X:      c.Query("x"),
		Y:      c.Query("y"),
		Color:  c.Query("color"),
		Group:  c.Query("group"),
		Dims:   multiQuery(c, "dims"),
		Path:   multiQuery(c, "path"),
		Values: c.Query("values"),
	}
}

func multiQuery(c *gin.Context, key string) []string {
	values, present := c.GetQueryArray(key)
	if !present {
		return nil
	}
	out := []string{}
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// publicMessage is the text a client may see for err. Server-side failures
// carry paths and driver detail, so they are replaced by a generic message.
func publicMessage(err error) string {
	if !apperrors.IsAppError(err) || apperrors.HTTPStatus(err) >= http.StatusInternalServerError {
		return internalErrorMessage
	}
	return err.Error()
}

const internalErrorMessage = "Internal server error"

// respondError writes {"error", "code"} with a status derived from the code.
func (s *Server) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.GetCode(err)
	if !apperrors.IsAppError(err) || status == http.StatusInternalServerError {
		code = apperrors.CodeInternalError
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": publicMessage(err), "code": code})
}
