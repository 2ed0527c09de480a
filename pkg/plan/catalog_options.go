package plan

import "log/slog"

// CatalogOption configures the catalog during construction.
type CatalogOption func(*Catalog)

// WithLogger sets the slog logger used for operational messages.
func WithLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}
