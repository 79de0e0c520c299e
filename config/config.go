package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServicePort      string
	MetricsPort      string
	PostgreSQLConfig PostgreSQLConfig
	JWTSecret        string
	PayFastConfig    PayFastConfig
	KafkaConfig      KafkaConfig
	SMTPConfig       SMTPConfig
	TracingConfig    TracingConfig
	AbandonedPeriod  time.Duration
	SweepInterval    time.Duration
}

type PostgreSQLConfig struct {
	DBHost     string
	DBName     string
	DBPort     string
	DBUsername string
	DBPassword string
}

type PayFastConfig struct {
	MerchantID          string
	MerchantKey         string
	Passphrase          string
	ProcessURL          string
	ValidateURL         string
	ReturnURL           string
	CancelURL           string
	NotifyURL           string
	SignatureAlgorithm  string
	ValidateWithGateway bool
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
}

type SMTPConfig struct {
	Sender   string
	Password string
	Server   string
	Port     int
}

type TracingConfig struct {
	CollectorHost string
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	brokerPartition, _ := strconv.Atoi(os.Getenv("BROKER_PARTITION"))
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	validateWithGateway, _ := strconv.ParseBool(os.Getenv("PAYFAST_VALIDATE_WITH_GATEWAY"))

	abandonedHours, err := strconv.Atoi(os.Getenv("ABANDONED_PAYMENT_HOURS"))
	if err != nil || abandonedHours <= 0 {
		abandonedHours = 24
	}

	sweepSeconds, err := strconv.Atoi(os.Getenv("ABANDONED_SWEEP_SECONDS"))
	if err != nil || sweepSeconds <= 0 {
		sweepSeconds = 300
	}

	conf := Config{
		ServicePort: os.Getenv("SERVICE_PORT"),
		MetricsPort: os.Getenv("METRICS_PORT"),
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress:   os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:     os.Getenv("BROKER_TOPIC"),
			BrokerPartition: brokerPartition,
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		PayFastConfig: PayFastConfig{
			MerchantID:          os.Getenv("PAYFAST_MERCHANT_ID"),
			MerchantKey:         os.Getenv("PAYFAST_MERCHANT_KEY"),
			Passphrase:          os.Getenv("PAYFAST_PASSPHRASE"),
			ProcessURL:          os.Getenv("PAYFAST_PROCESS_URL"),
			ValidateURL:         os.Getenv("PAYFAST_VALIDATE_URL"),
			ReturnURL:           os.Getenv("PAYFAST_RETURN_URL"),
			CancelURL:           os.Getenv("PAYFAST_CANCEL_URL"),
			NotifyURL:           os.Getenv("PAYFAST_NOTIFY_URL"),
			SignatureAlgorithm:  os.Getenv("PAYFAST_SIGNATURE_ALGORITHM"),
			ValidateWithGateway: validateWithGateway,
		},
		SMTPConfig: SMTPConfig{
			Sender:   os.Getenv("SMTP_SENDER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Server:   os.Getenv("SMTP_SERVER"),
			Port:     smtpPort,
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
		AbandonedPeriod: time.Duration(abandonedHours) * time.Hour,
		SweepInterval:   time.Duration(sweepSeconds) * time.Second,
	}

	return &conf
}
