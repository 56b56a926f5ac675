package sqs

import (
	"errors"
	"fmt"

	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"

	"github.com/squashedelephant/connectors/adapter/queue"
	"github.com/squashedelephant/connectors/types"
)

var credentialCodes = map[string]bool{
	"InvalidClientTokenId":        true,
	"ExpiredToken":                true,
	"ExpiredTokenException":       true,
	"UnrecognizedClientException": true,
	"AccessDenied":                true,
	"AccessDeniedException":       true,
	"InvalidSecurity":             true,
	"MissingAuthenticationToken":  true,
}

var clockSkewCodes = map[string]bool{
	"SignatureDoesNotMatch": true,
	"RequestExpired":        true,
	"RequestTimeTooSkewed":  true,
}

var queueMissingCodes = map[string]bool{
	"QueueDoesNotExist":                       true,
	"AWS.SimpleQueueService.NonExistentQueue": true,
}

var leaseCodes = map[string]bool{
	"ReceiptHandleIsInvalid":                        true,
	"MessageNotInflight":                            true,
	"AWS.SimpleQueueService.MessageNotInflight":     true,
	"AWS.SimpleQueueService.ReceiptHandleIsInvalid": true,
}

func classify(op string, err error) error {
	var qne *sqstypes.QueueNameExists
	if errors.As(err, &qne) {
		return types.NewError(types.KindInvalidRequest, op, fmt.Errorf("%w: %w", queue.ErrQueueExists, err))
	}

	var qdne *sqstypes.QueueDoesNotExist
	if errors.As(err, &qdne) {
		return types.NewError(types.KindTargetMissing, op, err)
	}

	var rhi *sqstypes.ReceiptHandleIsInvalid
	var mni *sqstypes.MessageNotInflight
	if errors.As(err, &rhi) || errors.As(err, &mni) {
		return types.NewError(types.KindLeaseExpired, op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case credentialCodes[code]:
			return types.NewError(types.KindCredentials, op, err)
		case clockSkewCodes[code]:
			return types.NewError(types.KindClockSkew, op, err)
		case queueMissingCodes[code]:
			return types.NewError(types.KindTargetMissing, op, err)
		case leaseCodes[code]:
			return types.NewError(types.KindLeaseExpired, op, err)
		}

		return types.NewError(types.KindUnknown, op, err)
	}

	if types.IsDeadline(err) {
		return types.NewError(types.KindTimeout, op, err)
	}

	return types.NewError(types.KindUnreachable, op, err)
}
