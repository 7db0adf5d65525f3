package transport

import (
	"errors"
	"net/http"
	"strings"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/wb-go/wbf/ginext"
)

func errorCodeDefiner(err error) int {
	var upstream *model.UpstreamError

	switch {
	case errors.Is(err, model.ErrCommon500),
		errors.Is(err, model.ErrNotConfigured),
		errors.Is(err, model.ErrVendorTimeout):
		return 500
	case errors.Is(err, model.ErrAssetNotFound):
		return 404
	case errors.Is(err, model.ErrEmptyImage),
		errors.Is(err, model.ErrIncorrectURL),
		errors.Is(err, model.ErrIncorrectBase64),
		errors.Is(err, model.ErrEmptyOperation),
		errors.Is(err, model.ErrUnknownOperation),
		errors.Is(err, model.ErrMissingDimensions),
		errors.Is(err, model.ErrEmptyTaskID),
		errors.Is(err, model.ErrUnsupportedFormat):
		return 400
	case errors.As(err, &upstream):
		switch upstream.Status {
		case 401, 404, 429:
			return upstream.Status
		}
		return 500
	default:
		return 500
	}
}

// errorBody - {success:false, error, details?, suggestion?}
func errorBody(err error) map[string]any {
	body := map[string]any{"success": false, "error": err.Error()}

	var upstream *model.UpstreamError
	switch {
	case errors.Is(err, model.ErrVendorTimeout):
		body["error"] = "Request timeout"
		body["details"] = "The image processing service took too long to respond."
		body["suggestion"] = "Try again in a moment or use a smaller image."
	case errors.Is(err, model.ErrNotConfigured):
		body["suggestion"] = "Check your API key configuration"
	case errors.Is(err, model.ErrCommon500):
		body["error"] = model.ErrCommon500.Error()
		if details := strings.TrimPrefix(err.Error(), model.ErrCommon500.Error()+": "); details != err.Error() {
			body["details"] = details
		}
		body["suggestion"] = "Check your API keys and ensure the image is accessible."
	case errors.As(err, &upstream) && upstream.Status == 401:
		body["details"] = "Please check your API key configuration."
	case errors.As(err, &upstream) && upstream.Status == 429:
		body["details"] = "You may have exceeded your API request limit."
	case errors.Is(err, model.ErrIncorrectBase64):
		body["details"] = "Expected base64 data URL starting with data:image/"
	}
	return body
}

func respondError(ctx *ginext.Context, err error) {
	ctx.JSON(errorCodeDefiner(err), errorBody(err))
}

func respondBadJSON(ctx *ginext.Context) {
	ctx.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
}
