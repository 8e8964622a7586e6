package services

const (
	MsgWelcome         = "Welcome! Please type the name of the product for this vouch."
	MsgAskImage        = "Thank you! Now, please send the image for the vouch."
	MsgImageReceived   = "Image received! Applying watermark..."
	MsgSubmitted       = "Your vouch has been submitted for approval."
	MsgImageFailed     = "Failed to process the image. Use /start to try again."
	MsgCancelled       = "Vouch submission canceled."
	MsgNothingToCancel = "There is no vouch in progress to cancel."
	MsgUseStart        = "Use /start to submit a vouch."
	MsgNeedProduct     = "Please type the name of the product first."
	MsgNeedImage       = "Please send an image for the vouch, or /cancel."
	MsgAlreadyStarted  = "You already have a vouch in progress. Use /cancel to abandon it."
	MsgTooManyPending  = "You already have a vouch awaiting review."
	MsgNoPending       = "No pending vouches."
	MsgNotModerator    = "You do not have admin privileges to view vouches."
	MsgApproved        = "Vouch Approved ✅"
	MsgDenied          = "Vouch Denied ❌"
	MsgBroadcastFailed = "Vouch Approved ✅ but failed to post vouch. Please try again."
	MsgAlreadyResolved = "This vouch was already resolved."
	MsgPendingCaption  = "Pending Vouch\nProduct: %s\nSubmitted by: %s"
)
