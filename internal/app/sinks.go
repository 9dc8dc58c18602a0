package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"kaetram/client/internal/config"
	"kaetram/client/logging"
	loggingsinks "kaetram/client/logging/sinks"
)

// buildSinks instantiates every sink enabled in cfg. console writes to out;
// zap writes to the rotated zap_path when set and to logger otherwise.
func buildSinks(cfg *config.Config, out io.Writer, logger *zap.Logger) ([]logging.NamedSink, error) {
	routerCfg := cfg.Router()
	var named []logging.NamedSink
	for _, name := range routerCfg.EnabledSinks {
		switch name {
		case "console":
			named = append(named, logging.NamedSink{Name: name, Sink: loggingsinks.NewConsoleSink(out, routerCfg.Console)})
		case "json":
			named = append(named, logging.NamedSink{Name: name, Sink: loggingsinks.NewRotatingJSON(routerCfg.JSON.FilePath, routerCfg.Rotation, routerCfg.JSON.FlushInterval)})
		case "zap":
			if cfg.Logging.ZapPath != "" {
				named = append(named, logging.NamedSink{Name: name, Sink: loggingsinks.NewZapFile(cfg.Logging.ZapPath, routerCfg.Rotation)})
			} else {
				named = append(named, logging.NamedSink{Name: name, Sink: loggingsinks.NewZap(logger)})
			}
		default:
			return nil, fmt.Errorf("unknown logging sink %q", name)
		}
	}
	return named, nil
}
