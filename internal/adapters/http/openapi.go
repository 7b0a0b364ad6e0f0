package httpadapter

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// requestSchemas validates JSON request bodies against the component
// schemas of the embedded API document.
type requestSchemas struct {
	doc *openapi3.T
}

func loadRequestSchemas() (*requestSchemas, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return &requestSchemas{doc: doc}, nil
}

// decode reads a JSON body, checks it against the named schema and fills
// out. Failures are ErrInvalidInput.
func (s *requestSchemas) decode(body io.Reader, schemaName string, out any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.WrapError(domain.ErrTooLarge, "read request body", err)
		}
		return domain.WrapError(domain.ErrInvalidInput, "read request body", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request body", errors.New("invalid json"))
	}

	if s != nil && s.doc.Components != nil {
		ref, ok := s.doc.Components.Schemas[schemaName]
		if !ok || ref.Value == nil {
			return fmt.Errorf("schema %q is not defined", schemaName)
		}
		if err := ref.Value.VisitJSON(generic); err != nil {
			return domain.WrapError(domain.ErrInvalidInput, "validate request body", schemaFailure(err))
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request body", err)
	}
	return nil
}

func schemaFailure(err error) error {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		field := strings.Join(schemaErr.JSONPointer(), ".")
		if field == "" {
			return errors.New(schemaErr.Reason)
		}
		return fmt.Errorf("%s: %s", field, schemaErr.Reason)
	}
	return err
}

func (rt *Router) openAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}
