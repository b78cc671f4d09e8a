package deliver

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

func newKey(t *testing.T) ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return priv
}

func TestSignersFromKeyDir(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	dir := t.TempDir()
	block, err := ssh.MarshalPrivateKey(newKey(t), "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id_ed25519"), pem.EncodeToMemory(block), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a key"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old"), 0700))

	keys, agentConn := signers(dir)
	assert.Nil(t, agentConn)
	assert.Len(t, keys, 1)

	keys, agentConn = signers(filepath.Join(dir, "missing"))
	assert.Nil(t, agentConn)
	assert.Empty(t, keys)
}

func TestSignersAgentConnection(t *testing.T) {
	keyring := agent.NewKeyring()
	require.NoError(t, keyring.Add(agent.AddedKey{PrivateKey: newKey(t)}))

	socket := filepath.Join(t.TempDir(), "agent.sock")
	l, err := net.Listen("unix", socket)
	require.NoError(t, err)
	defer l.Close()

	served := make(chan struct{})
	go func() {
		defer close(served)
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		agent.ServeAgent(keyring, conn)
	}()

	t.Setenv("SSH_AUTH_SOCK", socket)
	keys, agentConn := signers(t.TempDir())
	require.NotNil(t, agentConn)
	require.Len(t, keys, 1)

	sig, err := keys[0].Sign(rand.Reader, []byte("data"))
	require.NoError(t, err)
	assert.NoError(t, keys[0].PublicKey().Verify([]byte("data"), sig))

	require.NoError(t, agentConn.Close())
	select {
	case <-served:
	case <-time.After(5 * time.Second):
		t.Fatal("agent connection was not closed")
	}
}
