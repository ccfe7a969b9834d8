package identity_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

/*
 * Container setup and shared flows for the identity service end-to-end
 * tests. Phone proofs come from the built-in provider with dev echo on, so
 * tests read the texted code straight from the challenge response.
 */

const (
	testImageName = "tilldesk-identity-test:latest"

	ownerName     = "Sam Owner"
	ownerPhone    = "+61400000001"
	ownerPassword = "Owner123!"
	ownerPIN      = "1234"
)

// TestMain builds the Docker image once before all tests and removes it
// after.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Identity Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Identity Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/identity/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

func baseEnv() map[string]string {
	return map[string]string{
		"IDENTITY_DATABASE_FILE": "/tmp/identity.db",
		"IDENTITY_PEPPER_FILE":   "/tmp/pepper",
		"IDENTITY_ISSUER":        "tilldesk-identity",
		"IDENTITY_AUDIENCE":      "tilldesk",
		"IDENTITY_NUM_KEYS":      "1",
		"PHONE_PROOF_LOCAL":      "true",
		"PHONE_PROOF_DEV_ECHO":   "true",
		"ENV":                    "test",
		"LOG_LEVEL":              "info",
		"LOG_FORMAT":             "json",
	}
}

// setupIdentityContainer starts the service with relaxed rate limits.
func setupIdentityContainer(t *testing.T) string {
	t.Helper()

	env := baseEnv()
	for _, profile := range []string{"STRICT", "MODERATE", "LENIENT"} {
		env["RATELIMIT_"+profile+"_REQUESTS"] = "1000"
		env["RATELIMIT_"+profile+"_BURST"] = "1000"
	}
	return startContainer(t, env)
}

// setupIdentityContainerWithDefaultRateLimits keeps the production limits,
// for the rate limit tests only.
func setupIdentityContainerWithDefaultRateLimits(t *testing.T) string {
	t.Helper()
	return startContainer(t, baseEnv())
}

func startContainer(t *testing.T, env map[string]string) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// proveDevice runs the texted-code exchange and returns a phone-proof token.
func proveDevice(t *testing.T, client *identitysdk.SDKClient, phone string) string {
	t.Helper()

	challenge, err := client.RequestPhoneCode(t.Context(), phone)
	require.NoError(t, err)
	require.NotEmpty(t, challenge.Code, "dev echo should return the code")

	proof, err := client.VerifyPhoneCode(t.Context(), phone, challenge.Code)
	require.NoError(t, err)
	require.NotEmpty(t, proof.PhoneToken)
	return proof.PhoneToken
}

// registerOwner bootstraps the business and unlocks the owner's session.
func registerOwner(t *testing.T, client *identitysdk.SDKClient) *identitysdk.Session {
	t.Helper()

	session, err := client.RegisterOwner(t.Context(), identitysdk.RegisterOwnerRequest{
		Name:       ownerName,
		Phone:      ownerPhone,
		PhoneToken: proveDevice(t, client, ownerPhone),
		Password:   ownerPassword,
		PIN:        ownerPIN,
	})
	require.NoError(t, err, "owner registration should succeed")
	require.Equal(t, "owner", session.Account().Role)

	state, err := session.VerifyPIN(t.Context(), ownerPIN)
	require.NoError(t, err)
	require.Equal(t, "unlocked", state.State)
	return session
}

// joinWithInvite creates an invite as owner and redeems it for phone.
func joinWithInvite(t *testing.T, client *identitysdk.SDKClient, owner *identitysdk.Session, role, name, phone, pin string) *identitysdk.Session {
	t.Helper()

	inv, err := owner.CreateInvite(t.Context(), identitysdk.CreateInviteRequest{Role: role})
	require.NoError(t, err)

	session, err := client.RedeemInvite(t.Context(), identitysdk.RedeemInviteRequest{
		Code:       inv.Code,
		Name:       name,
		Phone:      phone,
		PhoneToken: proveDevice(t, client, phone),
		PIN:        pin,
	})
	require.NoError(t, err)
	require.Equal(t, role, session.Account().Role)
	return session
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, identitysdk.IsCode(err, code), "want %s, got %v", code, err)
}
