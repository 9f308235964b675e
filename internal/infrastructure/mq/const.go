package mq

const (
	TopicNotify      = "notify_topic"
	TagPushTherapist = "push_therapist"
	TagPushBroadcast = "push_broadcast"

	TopicPayment      = "payment_topic"
	TagPaymentSuccess = "payment_success"
)
