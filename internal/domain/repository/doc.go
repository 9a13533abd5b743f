// Package repository define las interfaces de persistencia de la capa de
// conexiones sociales. Los adapters viven en internal/store/pg y
// internal/store/memory.
package repository
