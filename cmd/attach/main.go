// Command attach uploads a scanned prescription to a running MedTrack
// server on behalf of the issuing doctor.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/admin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var server, identifier, id, file, contentType string
	flag.StringVar(&server, "server", "http://localhost:4000", "MedTrack API base URL")
	flag.StringVar(&identifier, "login", "", "doctor email or phone")
	flag.StringVar(&id, "id", "", "prescription id")
	flag.StringVar(&file, "file", "", "path of the scan to upload")
	flag.StringVar(&contentType, "type", "", "content type of the scan")
	flag.Parse()

	if identifier == "" || id == "" || file == "" {
		flag.Usage()
		return fmt.Errorf("-login, -id and -file are required")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	password, err := admin.GetPassword(bufio.NewReader(os.Stdin), os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	a := &admin.Attacher{BaseURL: server, Client: &http.Client{Timeout: 30 * time.Second}}
	token, err := a.Login(ctx, identifier, password)
	if err != nil {
		return err
	}

	key, err := a.Attach(ctx, token, id, contentType, data)
	if err != nil {
		return err
	}

	fmt.Println("Uploaded", key)
	return nil
}
