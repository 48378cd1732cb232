package pagination

import (
	"go.uber.org/zap"

	"github.com/gompdf/printform/internal/config"
)

// Engine handles the pagination process
type Engine struct {
	config config.Config
	log    *zap.Logger
}

// NewEngine creates a new pagination engine with default policy
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		config: config.Default(),
		log:    log,
	}
}

// SetConfig sets the pagination policy
func (e *Engine) SetConfig(cfg config.Config) {
	e.config = cfg
}

// Config returns the pagination policy in use
func (e *Engine) Config() config.Config {
	return e.config
}

// Paginate breaks registry content into pages
func (e *Engine) Paginate(reg *Registry) (Stream, error) {
	return Build(e.config, reg, e.log)
}
