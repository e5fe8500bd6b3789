package handler

// RegisterDeviceRequest is the body of the device registration call.
type RegisterDeviceRequest struct {
	PushToken string `json:"pushToken"`
}

// Validate accepts an empty push token here; whether one is required
// depends on the server's operating mode, which the directory enforces.
func (r RegisterDeviceRequest) Validate() error {
	return nil
}
