package apiv1

type GetVapidPublicKeyRequest struct{}

type GetVapidPublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type RegisterPushSubscriptionRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dh_key"`
	AuthKey   string `json:"auth_key"`
	// Topics limits which notifications reach the subscription; empty means all.
	Topics []string `json:"topics,omitempty"`
}

type RegisterPushSubscriptionResponse struct {
	ID string `json:"id"`
}

type UnregisterPushSubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
}

type UnregisterPushSubscriptionResponse struct{}
