package errors

import (
	"errors"
	"net/http"

	"qoedash/internal/dataprocessing"
)

// Dataset and dashboard sentinel errors
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrNoFileUploaded  = errors.New("no file uploaded")
	ErrUploadTooLarge  = errors.New("payload too large")
	ErrUnknownCategory = errors.New("unknown measurement category")
)

// mapDatasetError converts the errors produced while loading and querying
// datasets into problem details. It returns nil for anything else.
func mapDatasetError(err error, instance string) *ProblemDetails {
	var missing *dataprocessing.MissingColumnsError
	var parseErr *dataprocessing.ParseError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &missing):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeMissingColumns,
			"Missing Required Columns",
			missing.Error(),
			instance,
		).WithExtension("missing_columns", missing.Columns)

	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return NewProblemDetails(
			http.StatusUnsupportedMediaType,
			TypeUnsupportedFormat,
			"Unsupported File Format",
			"Upload a CSV or XLSX measurement export",
			instance,
		)

	case errors.Is(err, dataprocessing.ErrEmptyFile):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeEmptyFile,
			"Empty File",
			"The uploaded file contains no header row",
			instance,
		)

	case errors.As(err, &parseErr):
		problem := NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeParseFailed,
			"File Could Not Be Parsed",
			parseErr.Error(),
			instance,
		).WithExtension("stage", parseErr.Stage)
		if parseErr.Row > 0 {
			problem.WithExtension("row", parseErr.Row)
		}
		if parseErr.Column != "" {
			problem.WithExtension("column", parseErr.Column)
		}
		return problem

	case errors.Is(err, ErrUploadTooLarge), errors.As(err, &tooLarge):
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			"The uploaded file exceeds the maximum allowed size",
			instance,
		)

	case errors.Is(err, ErrDatasetNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeDatasetNotFound,
			"Dataset Not Found",
			"The dataset does not exist or its session has expired",
			instance,
		)

	case errors.Is(err, ErrNoFileUploaded):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			"A measurement file must be sent in the \"file\" form field",
			instance,
		)

	case errors.Is(err, ErrUnknownCategory):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeInvalidSelection,
			"Invalid Selection",
			err.Error(),
			instance,
		)
	}

	return nil
}
