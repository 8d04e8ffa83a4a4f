package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPort is the single well-known NETTF port. There is no negotiation.
const DefaultPort = 9876

// Config holds tool configuration. Fields are unexported to prevent modification.
type Config struct {
	port               int
	receiveDir         string
	logFile            string
	monitorAddr        string
	stunServer         string
	dialTimeout        time.Duration
	serviceName        string
	serviceDisplayName string
	serviceDescription string
}

func New() *Config {
	_ = godotenv.Load() // ignore error if .env not found

	port, err := strconv.Atoi(os.Getenv("NETTF_PORT"))
	if err != nil || port <= 0 || port > 65535 {
		port = DefaultPort
	}

	receiveDir := os.Getenv("NETTF_RECEIVE_DIR")
	if receiveDir == "" {
		receiveDir = "."
	}

	logFile := os.Getenv("NETTF_LOG_FILE")
	if logFile == "" {
		logFile = "nettf.log"
	}

	stunServer := os.Getenv("STUN_SERVER")
	if stunServer == "" {
		stunServer = "stun.l.google.com:19302"
	}

	dialSec, err := strconv.Atoi(os.Getenv("NETTF_DIAL_TIMEOUT"))
	if err != nil || dialSec <= 0 {
		dialSec = 10
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "nettf"
	}

	serviceDisplayName := os.Getenv("SERVICE_DISPLAY_NAME")
	if serviceDisplayName == "" {
		serviceDisplayName = "NETTF Receiver"
	}

	monitorAddr := os.Getenv("NETTF_MONITOR_ADDR")
	if monitorAddr == "" {
		monitorAddr = "127.0.0.1:9877"
	}

	serviceDescription := os.Getenv("SERVICE_DESCRIPTION")
	if serviceDescription == "" {
		serviceDescription = "Listens for incoming NETTF file and directory transfers"
	}

	return &Config{
		port:               port,
		receiveDir:         receiveDir,
		logFile:            logFile,
		monitorAddr:        monitorAddr,
		stunServer:         stunServer,
		dialTimeout:        time.Duration(dialSec) * time.Second,
		serviceName:        serviceName,
		serviceDisplayName: serviceDisplayName,
		serviceDescription: serviceDescription,
	}
}

// Getter methods (immutable from outside)

func (c *Config) Port() int {
	return c.port
}

func (c *Config) ReceiveDir() string {
	return c.receiveDir
}

func (c *Config) LogFile() string {
	return c.logFile
}

func (c *Config) MonitorAddr() string {
	return c.monitorAddr
}

func (c *Config) StunServer() string {
	return c.stunServer
}

func (c *Config) DialTimeout() time.Duration {
	return c.dialTimeout
}

func (c *Config) ServiceName() string {
	return c.serviceName
}

func (c *Config) ServiceDisplayName() string {
	return c.serviceDisplayName
}

func (c *Config) ServiceDescription() string {
	return c.serviceDescription
}
