package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/llm"
	"postman-sync/internal/parser"
	"postman-sync/internal/types"
)

// ControllersDir is where a Rails project keeps its controllers.
const ControllersDir = "app/controllers"

// Analyze derives endpoint descriptors from controller sources. With no
// paths, every *_controller.rb under the project's app/controllers is read.
// Relative paths are looked up in the Rails project first.
func (s *Service) Analyze(ctx context.Context, paths []string) (types.EndpointSet, error) {
	if s.analyzer == nil {
		if err := s.config.LLM.Validate(); err != nil {
			return types.EndpointSet{}, err
		}
		return types.EndpointSet{}, syncerrors.NewMissingCredentialError(
			"Set it in the environment, a .env file or the llm section of the config file", "OPENAI_API_KEY")
	}

	projectPath := s.config.Rails.ProjectPath
	if len(paths) == 0 {
		if err := s.config.RequireRails(); err != nil {
			return types.EndpointSet{}, err
		}
		found, err := FindControllers(projectPath)
		if err != nil {
			return types.EndpointSet{}, err
		}
		paths = found
	}

	req := llm.AnalysisRequest{}
	for _, p := range paths {
		path := resolve(projectPath, p)
		code, err := os.ReadFile(path)
		if err != nil {
			return types.EndpointSet{}, fmt.Errorf("failed to read controller: %w", err)
		}
		req.Controllers = append(req.Controllers, llm.SourceFile{Path: p, Code: string(code)})
	}

	if projectPath != "" {
		routes, err := parser.ReadRoutes(projectPath)
		switch {
		case errors.Is(err, parser.ErrRoutesNotFound):
			s.logger.Warn().Str("path", parser.RoutesPath(projectPath)).Msg("routes.rb not found, paths will be inferred")
		case err != nil:
			return types.EndpointSet{}, err
		default:
			req.Routes = routes
		}
	}

	return s.analyzer.AnalyzeEndpoints(ctx, req)
}

// AnalysisTemplate is the JSON structure an endpoint analysis fills in.
func (s *Service) AnalysisTemplate() string {
	return llm.Template()
}

// FindControllers lists the controller files of a Rails project, relative
// to the project and sorted.
func FindControllers(projectPath string) ([]string, error) {
	root := filepath.Join(projectPath, ControllersDir)
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "_controller.rb") {
			rel, err := filepath.Rel(projectPath, path)
			if err != nil {
				return err
			}
			found = append(found, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list controllers: %w", err)
	}
	if len(found) == 0 {
		return nil, syncerrors.NewMalformedInputError("Rails project", "no controllers found under "+root, nil)
	}
	sort.Strings(found)
	return found, nil
}

func resolve(projectPath, p string) string {
	if projectPath == "" || filepath.IsAbs(p) {
		return p
	}
	candidate := filepath.Join(projectPath, p)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return p
}
