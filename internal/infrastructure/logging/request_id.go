package logging

import (
	"strings"

	"github.com/google/uuid"
)

// RequestIDGenerator genera identificadores de request con prefijo
type RequestIDGenerator struct {
	prefix string
}

func NewRequestIDGenerator(prefix string) *RequestIDGenerator {
	if prefix == "" {
		prefix = "req"
	}
	return &RequestIDGenerator{prefix: prefix}
}

// Generate crea un ID único con formato {prefix}_{uuid}
func (g *RequestIDGenerator) Generate() string {
	return g.prefix + "_" + uuid.NewString()
}

// GenerateShort crea un ID corto usando el primer bloque del uuid
func (g *RequestIDGenerator) GenerateShort() string {
	id := uuid.NewString()
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		id = id[:idx]
	}
	return g.prefix + "_" + id
}

var defaultGenerator = NewRequestIDGenerator("req")

// GenerateRequestID genera un request ID con el generador por defecto
func GenerateRequestID() string {
	return defaultGenerator.Generate()
}

// IsValidRequestID acepta IDs entrantes razonables para propagarlos tal cual
func IsValidRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
