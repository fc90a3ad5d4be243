package cfg

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Backend string
	Minio   *MinIOCfg
	Http    *HTTPConfig
	Grpc    *GRPCConfig
	Db      *PGDBCfg
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	POS     *POSCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string        // Адрес конечной точки Minio
	BucketName        string        // Бакет для выгрузок журнала
	MinioRootUser     string        // Имя пользователя для доступа к Minio
	MinioRootPassword string        // Пароль для доступа к Minio
	MinioUseSSL       bool          // Подключение по TLS
	ExportURLTTL      time.Duration // Время жизни ссылки на скачивание выгрузки
	ExportRetention   int           // Сколько дней хранить выгрузки, 0 — бессрочно
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
	SessionTTL  time.Duration
}

// POSCfg — параметры кассы.
type POSCfg struct {
	Terminals    domain.TerminalSet
	TaxRate      decimal.Decimal
	Currency     string
	Company      string
	MaxCartItems int
	MaxQuantity  int
	LockTimeout  time.Duration
	SearchLimit  int
	Users        []domain.User
}

// LogCfg читается до создания логгера, поэтому загружается отдельно.
type LogCfg struct {
	Level      string
	Dev        bool
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// userEntry — запись POS_USERS: {"pos1": {"password": "...", "rol": "pos", "terminal": "POS1"}}.
type userEntry struct {
	Password string `json:"password"`
	Role     string `json:"rol"`
	Terminal string `json:"terminal"`
}

var defaultUsers = map[string]userEntry{
	"admin": {Password: "admin123", Role: "admin", Terminal: "ALL"},
	"pos1":  {Password: "pos1123", Role: "pos", Terminal: "POS1"},
	"pos2":  {Password: "pos2123", Role: "pos", Terminal: "POS2"},
	"pos3":  {Password: "pos3123", Role: "pos", Terminal: "POS3"},
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Для бэкенда memory подключения к Postgres, Kafka, Redis и MinIO не требуются.
func Load(log logger.Logger) (*Config, error) {
	backend := getEnvOrDefault("STORAGE_BACKEND", BackendPostgres)
	if backend != BackendPostgres && backend != BackendMemory {
		err := fmt.Errorf("%w: STORAGE_BACKEND=%s", e.ErrIncorrectEnvVariable, backend)
		log.Errorf(err, "invalid STORAGE_BACKEND")
		return nil, err
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	pos, err := loadPOSCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	config := &Config{
		Backend: backend,
		Http:    http,
		Grpc:    loadGRPCConfig(),
		POS:     pos,
	}
	if backend == BackendMemory {
		return config, nil
	}

	config.Db, err = loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	config.Redis, err = loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	config.Minio, err = loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	config.Kafka, err = loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return config, nil
}

// LoadLogCfg читает настройки логгера.
func LoadLogCfg() (*LogCfg, error) {
	const (
		defaultLevel      = "info"
		defaultMaxSizeMB  = 100
		defaultMaxBackups = 5
	)

	dev, err := strconv.ParseBool(getEnvOrDefault("LOG_DEV", "false"))
	if err != nil {
		return nil, e.Wrap("LOG_DEV", e.ErrIncorrectEnvVariable)
	}

	maxSize, err := parseIntEnv("LOG_MAX_SIZE_MB", defaultMaxSizeMB)
	if err != nil {
		return nil, e.Wrap("LOG_MAX_SIZE_MB", err)
	}

	maxBackups, err := parseIntEnv("LOG_MAX_BACKUPS", defaultMaxBackups)
	if err != nil {
		return nil, e.Wrap("LOG_MAX_BACKUPS", err)
	}

	return &LogCfg{
		Level:      getEnvOrDefault("LOG_LEVEL", defaultLevel),
		Dev:        dev,
		File:       getEnv("LOG_FILE"),
		MaxSizeMB:  maxSize,
		MaxBackups: maxBackups,
	}, nil
}

func loadPOSCfg(log logger.Logger) (*POSCfg, error) {
	const (
		defaultTerminals = "POS1,POS2,POS3"
		defaultTaxRate   = "21"
		defaultCurrency  = "$"
		defaultCompany   = "POCOPAN"
		defaultLockWait  = 5 * time.Second
	)

	var ids []domain.TerminalID
	for _, id := range strings.Split(getEnvOrDefault("POS_TERMINALS", defaultTerminals), ",") {
		ids = append(ids, domain.ParseTerminalID(id))
	}
	terminals := domain.NewTerminalSet(ids...)
	if len(terminals.Terminals()) == 0 {
		err := fmt.Errorf("%w: POS_TERMINALS is empty", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid POS_TERMINALS")
		return nil, err
	}

	taxRate, err := decimal.NewFromString(getEnvOrDefault("POS_TAX_RATE", defaultTaxRate))
	if err != nil || taxRate.IsNegative() {
		err = fmt.Errorf("%w: POS_TAX_RATE", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid POS_TAX_RATE")
		return nil, err
	}

	maxItems, err := parseIntEnv("POS_MAX_CART_ITEMS", domain.DefaultMaxCartItems)
	if err != nil {
		return nil, e.Wrap("POS_MAX_CART_ITEMS", err)
	}

	maxQuantity, err := parseIntEnv("POS_MAX_QUANTITY", domain.DefaultMaxQuantity)
	if err != nil {
		return nil, e.Wrap("POS_MAX_QUANTITY", err)
	}

	searchLimit, err := parseIntEnv("POS_SEARCH_LIMIT", domain.DefaultSearchLimit)
	if err != nil {
		return nil, e.Wrap("POS_SEARCH_LIMIT", err)
	}

	lockTimeout, err := parseDurationEnv("POS_LOCK_TIMEOUT", defaultLockWait)
	if err != nil {
		log.Errorf(err, "invalid POS_LOCK_TIMEOUT")
		return nil, err
	}

	users, err := parseUsers(getEnv("POS_USERS"), terminals)
	if err != nil {
		log.Errorf(err, "invalid POS_USERS")
		return nil, err
	}

	return &POSCfg{
		Terminals:    terminals,
		TaxRate:      taxRate,
		Currency:     getEnvOrDefault("POS_CURRENCY", defaultCurrency),
		Company:      getEnvOrDefault("POS_COMPANY", defaultCompany),
		MaxCartItems: maxItems,
		MaxQuantity:  maxQuantity,
		LockTimeout:  lockTimeout,
		SearchLimit:  searchLimit,
		Users:        users,
	}, nil
}

// parseUsers разбирает POS_USERS. Пустое значение — учётные записи по умолчанию.
// Пользователь pos обязан быть привязан к настроенному терминалу.
func parseUsers(raw string, terminals domain.TerminalSet) ([]domain.User, error) {
	entries := defaultUsers
	if raw != "" {
		entries = make(map[string]userEntry)
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, fmt.Errorf("%w: POS_USERS: %w", e.ErrIncorrectEnvVariable, err)
		}
	}

	users := make([]domain.User, 0, len(entries))
	for name, entry := range entries {
		user := domain.User{
			Username: name,
			Password: entry.Password,
			Role:     domain.Role(entry.Role),
			Terminal: domain.ParseTerminalID(entry.Terminal),
		}

		switch user.Role {
		case domain.RoleAdmin:
			user.Terminal = domain.AggregateTerminal
		case domain.RolePOS:
			if !terminals.IsSelling(user.Terminal) {
				return nil, fmt.Errorf("%w: user %s has unknown terminal %q", e.ErrIncorrectEnvVariable, name, entry.Terminal)
			}
		default:
			return nil, fmt.Errorf("%w: user %s has unknown role %q", e.ErrIncorrectEnvVariable, name, entry.Role)
		}

		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.User) int { return strings.Compare(a.Username, b.Username) })

	return users, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL    = false
		defaultEndpoint  = "minio:9000"
		defaultExportTTL = 15 * time.Minute
		defaultRetention = 7
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	exportTTL, err := parseDurationEnv("EXPORT_URL_TTL", defaultExportTTL)
	if err != nil {
		log.Errorf(err, "invalid EXPORT_URL_TTL")
		return nil, err
	}

	retention, err := parseIntEnv("EXPORT_RETENTION_DAYS", defaultRetention)
	if err != nil || retention < 0 {
		err = fmt.Errorf("%w: EXPORT_RETENTION_DAYS", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid EXPORT_RETENTION_DAYS")
		return nil, err
	}

	bucket := getEnv("BUCKET_NAME")
	if bucket == "" {
		err := fmt.Errorf("BUCKET_NAME is required")
		log.Errorf(err, "missing BUCKET_NAME")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        bucket,
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		ExportURLTTL:      exportTTL,
		ExportRetention:   retention,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost       = "localhost"
		defaultPort       = "5432"
		defaultSSLMode    = "disable"
		defaultMigrations = "file://db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:           getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:           getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:           user,
		Password:       password,
		DBName:         dbName,
		SSLMode:        getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrations),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
		defaultSessionTTL   = time.Hour
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	sessionTTL, err := parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		log.Errorf(err, "invalid SESSION_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
		SessionTTL:  sessionTTL,
	}, nil
}

// SessionTTL возвращает время жизни сессии; для бэкенда memory Redis не настраивается.
func (c *Config) SessionTTL() time.Duration {
	if c.Redis == nil {
		return time.Hour
	}
	return c.Redis.SessionTTL
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
