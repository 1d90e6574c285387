// Package main generates a CA and a server certificate under a directory
// for serving the API over HTTPS (-tls-cert / -tls-key) and for the shell
// client (-ca).
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NikhilYadav04/pillbin-v2/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	days := flag.Int("days", 365, "server certificate validity in days")
	flag.Parse()

	paths, err := run(*dir, strings.Split(*hosts, ","), time.Duration(*days)*24*time.Hour)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range paths {
		fmt.Println("wrote", p)
	}
}

// run writes ca.crt, ca.key, server.crt and server.key into dir.
func run(dir string, hosts []string, validFor time.Duration) ([]string, error) {
	for i := range hosts {
		hosts[i] = strings.TrimSpace(hosts[i])
	}

	ca, err := certgen.GenerateCA("PillBin CA", 10*365*24*time.Hour)
	if err != nil {
		return nil, err
	}
	caCert, caKey, err := ca.WriteFiles(dir, "ca")
	if err != nil {
		return nil, err
	}

	srv, err := certgen.GenerateServerCertificate(hosts, ca, validFor)
	if err != nil {
		return nil, err
	}
	srvCert, srvKey, err := srv.WriteFiles(dir, "server")
	if err != nil {
		return nil, err
	}
	return []string{caCert, caKey, srvCert, srvKey}, nil
}
