package deliver

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jeffwilliams/astata/internal/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// Ssh runs Stata on a remote host in an ssh session and types code into it.
type Ssh struct {
	endpt   string
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	done    chan struct{}
}

// DialSsh connects to the host in s, starts s.Command in a pseudo terminal and sends its
// output to output. Keys come from the ssh agent and the files in keyDir.
func DialSsh(s config.SshSettings, keyDir string, output Output) (t *Ssh, err error) {
	user := s.User
	if user == "" {
		if runtime.GOOS == "windows" {
			user = os.Getenv("USERNAME")
		} else {
			user = os.Getenv("USER")
		}
	}
	port := s.Port
	if port == "" {
		port = "22"
	}

	endpt := fmt.Sprintf("%s@%s:%s", user, s.Host, port)
	defer func() {
		if err != nil {
			err = fmt.Errorf("%s: %w", endpt, err)
		}
	}()

	keys, agentConn := signers(keyDir)
	if agentConn != nil {
		// Agent keys sign during the handshake only.
		defer agentConn.Close()
	}

	conf := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(keys...)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         time.Duration(s.ConnectionTimeout) * time.Second,
	}

	client, err := ssh.Dial("tcp", net.JoinHostPort(s.Host, port), conf)
	if err != nil {
		return
	}

	t, err = startSession(client, s.Command, output)
	if err != nil {
		client.Close()
		return
	}
	t.endpt = endpt
	return
}

func startSession(client *ssh.Client, command string, output Output) (t *Ssh, err error) {
	session, err := client.NewSession()
	if err != nil {
		return
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	err = session.RequestPty("dumb", 40, 200, modes)
	if err != nil {
		session.Close()
		return
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return
	}

	err = session.Start(command)
	if err != nil {
		session.Close()
		return
	}

	t = &Ssh{client: client, session: session, stdin: stdin, done: make(chan struct{})}
	go copyOutput(stdout, output)
	go func() {
		err := session.Wait()
		Debug("deliver: remote command exited: %v\n", err)
		close(t.done)
	}()
	return
}

func (t *Ssh) Name() string {
	return config.TargetSsh
}

func (t *Ssh) Capabilities() Capabilities {
	return CapabilitiesOf(config.TargetSsh)
}

func (t *Ssh) Send(code string) error {
	select {
	case <-t.done:
		return fmt.Errorf("%s: the remote Stata has exited; run 'Stata stop' to reconnect", t.endpt)
	default:
	}

	_, err := io.WriteString(t.stdin, ensureNewline(code))
	return err
}

func (t *Ssh) Close() error {
	t.stdin.Close()
	t.session.Close()
	return t.client.Close()
}

// signers collects the keys in the ssh agent and the private keys in keyDir. The agent's keys
// only work while agentConn is open; the caller closes it when it is not nil.
func signers(keyDir string) (result []ssh.Signer, agentConn net.Conn) {
	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		conn, err := net.Dial("unix", socket)
		if err == nil {
			Debug("deliver: adding keys from ssh agent (SSH_AUTH_SOCK)\n")
			s, err := agent.NewClient(conn).Signers()
			if err != nil {
				conn.Close()
			} else {
				result = append(result, s...)
				agentConn = conn
			}
		}
	}

	entries, err := os.ReadDir(keyDir)
	if err != nil {
		Debug("deliver: error reading sshkeys directory: %v\n", err)
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, err := os.ReadFile(filepath.Join(keyDir, e.Name()))
		if err != nil {
			continue
		}
		s, err := ssh.ParsePrivateKey(key)
		if err != nil {
			Debug("deliver: decoding key %s failed: %s. Key will not be usable.\n", e.Name(), err)
			continue
		}
		result = append(result, s)
	}

	return
}
