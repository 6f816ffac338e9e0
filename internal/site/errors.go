package site

import (
	"errors"

	"github.com/uktrade/docsite/internal/collections"
	derrors "github.com/uktrade/docsite/internal/docs/errors"
	foundationerrors "github.com/uktrade/docsite/internal/foundation/errors"
	"github.com/uktrade/docsite/internal/passthrough"
	"github.com/uktrade/docsite/internal/render"
)

// classify turns a stage failure into a ClassifiedError. The cause keeps
// the offending path in its message.
func classify(err error) error {
	if _, ok := foundationerrors.AsClassified(err); ok {
		return err
	}
	var stage StageName
	var se *StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}

	var b *foundationerrors.ErrorBuilder
	switch {
	case errors.Is(err, derrors.ErrInputDirNotFound):
		b = foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "input directory not found")
	case errors.Is(err, derrors.ErrFrontMatter),
		errors.Is(err, derrors.ErrInvalidPermalink),
		errors.Is(err, derrors.ErrOutputCollision),
		errors.Is(err, derrors.ErrFileReadFailed),
		errors.Is(err, derrors.ErrWalkFailed):
		b = foundationerrors.WrapError(err, foundationerrors.CategoryDiscovery, "document discovery failed")
	case errors.Is(err, collections.ErrInvalidDefinition),
		errors.Is(err, collections.ErrDuplicateName),
		errors.Is(err, passthrough.ErrInvalidMapping):
		b = foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "invalid build configuration")
	case errors.Is(err, passthrough.ErrSourceNotFound):
		b = foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "passthrough source not found")
	case errors.Is(err, render.ErrTemplate),
		errors.Is(err, render.ErrLayoutNotFound),
		errors.Is(err, render.ErrUnknownEngine):
		b = foundationerrors.WrapError(err, foundationerrors.CategoryTemplate, "page rendering failed")
	case stage == StagePrepareOutput, stage == StagePassthrough, stage == StageManifest:
		b = foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to write build output")
	default:
		b = foundationerrors.WrapError(err, foundationerrors.CategoryBuild, "build failed")
	}
	if stage != "" {
		b = b.WithContext("stage", string(stage))
	}
	return b.Fatal().Build()
}
