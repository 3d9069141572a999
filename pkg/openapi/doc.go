// Package openapi describes a form's answer payload as an OpenAPI 3 schema so
// downstream services can validate submissions without the form runtime.
// Schemas are built with kin-openapi; callers receive openapi3 values they
// can embed in their own documents.
package openapi
