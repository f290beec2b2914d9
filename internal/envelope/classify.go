package envelope

import "github.com/webtool-dev/webtool/internal/docmodel"

// FromClassification maps a Fetch Engine classification directly onto an
// error code.
func FromClassification(c docmodel.Classification) ErrorCode {
	switch c {
	case docmodel.ClassBlocked:
		return ErrBlocked
	case docmodel.ClassNeedsRender:
		return ErrNeedsRender
	case docmodel.ClassNotFound:
		return ErrNotFound
	case docmodel.ClassTimeout:
		return ErrTimeout
	case docmodel.ClassTransportError:
		return ErrTransportError
	default:
		return ErrInternalError
	}
}
