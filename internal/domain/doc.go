// Package domain contains the core model types, event definitions, and the
// interfaces that decouple the application layer from infrastructure.
// It has no dependencies on other internal packages.
package domain
