/*
Copyright © 2025 yoke88

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.

You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package diagnostic

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
	"github.com/rs/zerolog/log"
)

// ConnectionDetails holds everything needed to reach one SQL Server
// instance.
type ConnectionDetails struct {
	Hostname               string
	Port                   string
	Instance               string
	Username               string
	Password               string
	Timeout                string
	EnableSSL              bool
	TrustServerCertificate bool
	CertificateLocation    string
}

// Connection wraps a SQL Server connection.
type Connection struct {
	db *sqlx.DB
}

// NewConnection opens and verifies a connection to the instance
// described by details.
func NewConnection(details *ConnectionDetails) (*Connection, error) {
	db, err := sqlx.Connect("sqlserver", details.ConnectionURL())
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", details.InstanceName(), err)
	}
	return &Connection{db: db}, nil
}

// NewConnectionFromDB wraps an existing database handle. Used by tests
// to substitute a mock.
func NewConnectionFromDB(db *sqlx.DB) *Connection {
	return &Connection{db: db}
}

// Close closes the SQL connection. If an error occurs it is logged as
// a warning.
func (c *Connection) Close() {
	if err := c.db.Close(); err != nil {
		log.Warn().Err(err).Msg("unable to close SQL connection")
	}
}

// InstanceName returns the identifier used for this server in export
// file names, HOST or HOST\INSTANCE for named instances.
func (details *ConnectionDetails) InstanceName() string {
	if details.Instance != "" {
		return details.Hostname + `\` + details.Instance
	}
	return details.Hostname
}

// ConnectionURL builds the driver connection string. All fields should
// be validated before calling this.
func (details *ConnectionDetails) ConnectionURL() string {
	connectionURL := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(details.Username, details.Password),
		Host:   details.Hostname,
	}

	// named instances are addressed by path, otherwise by port
	if details.Port != "" {
		connectionURL.Host = fmt.Sprintf("%s:%s", connectionURL.Host, details.Port)
	} else {
		connectionURL.Path = details.Instance
	}

	query := url.Values{}
	query.Add("dial timeout", details.Timeout)

	if details.EnableSSL {
		query.Add("encrypt", "true")
		query.Add("TrustServerCertificate", strconv.FormatBool(details.TrustServerCertificate))
		if !details.TrustServerCertificate {
			query.Add("certificate", details.CertificateLocation)
		}
	}

	connectionURL.RawQuery = query.Encode()
	return connectionURL.String()
}
