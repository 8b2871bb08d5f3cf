// Package cmd contains the chain admin commands.
package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	publicURL  string
	privateURL string
	keyName    string
	keyPath    string
)

const keyExtension = ".ecdsa"

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "chainadm",
	Short:         "Inspect and drive a fork aware blockchain node",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&publicURL, "url", "u", "http://localhost:8080", "Url of the node public api.")
	rootCmd.PersistentFlags().StringVar(&privateURL, "private-url", "http://localhost:9080", "Url of the node private api.")
	rootCmd.PersistentFlags().StringVarP(&keyName, "key", "k", "miner1", "Name of the private key.")
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
}

func getPrivateKeyPath() string {
	name := keyName
	if !strings.HasSuffix(name, keyExtension) {
		name += keyExtension
	}
	return filepath.Join(keyPath, name)
}

// =============================================================================

var client = http.Client{Timeout: 10 * time.Second}

// call sends the request to the node and writes the indented response
// document to out.
func call(out io.Writer, method string, url string, body any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return errors.New("nothing found")
	}

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &er); err == nil && er.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, er.Error)
		}
		return fmt.Errorf("%s: %s", resp.Status, string(data))
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err = buf.WriteTo(out)
	return err
}
