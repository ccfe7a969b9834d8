/*
Package identitysdk is a client for the tilldesk identity service.

# SDKClient vs Session

SDKClient covers the endpoints that need no token: setup status, owner
registration, sign-in, phone proof, and invite or transfer codes. Every call
that signs someone in returns a Session, which carries the access token and
its session id:

	client := identitysdk.NewSDKClient("https://identity.example.com")

	proof, err := client.VerifyPhoneCode(ctx, phone, code)
	session, err := client.LoginWithPhone(ctx, phone, proof.PhoneToken)

	// Every session starts locked behind the PIN.
	state, err := session.VerifyPIN(ctx, "1234")

# Errors

Non-2xx responses come back as *APIError with a stable Code:

	_, err := session.VerifyPIN(ctx, pin)
	if identitysdk.IsCode(err, identitysdk.ErrorCodeLockedOut) {
		var apiErr *identitysdk.APIError
		errors.As(err, &apiErr)
		wait(apiErr.RetryAfter)
	}

Set SDKClient.Language to receive error descriptions in another language
(currently "es").
*/
package identitysdk
