// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package conversation

// Reason names why a message was rejected.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonSenderNotFound        Reason = "SenderNotFound"
	ReasonSelfMessageNotAllowed Reason = "SelfMessageNotAllowed"
	ReasonReceiverNotFound      Reason = "ReceiverNotFound"
	ReasonInvalidContent        Reason = "InvalidContent"
)

// SendResult is the outcome of SendMessage.
type SendResult struct {
	Success bool
	Reason  Reason
}
