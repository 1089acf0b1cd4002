package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pokebase/pokebase-api/config"
	"github.com/pokebase/pokebase-api/internal/infrastructure/oauth"
	"github.com/pokebase/pokebase-api/internal/infrastructure/search"
	"github.com/pokebase/pokebase-api/internal/infrastructure/tcgapi"
	"github.com/pokebase/pokebase-api/pkg/helpers"
	"github.com/pokebase/pokebase-api/pkg/mailer"
)

// app-level container to share constructed components across packages.
// Router wires modules from these singletons; optional ones stay nil when
// their backing service is not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	mailgunClient *mailer.Mailgun
	rabbitPub     *helpers.RabbitPublisher
	dispatcher    *mailer.Dispatcher
	esClient      *elasticsearch.Client
	cardIndex     *search.CardIndex
	tcgClient     *tcgapi.Client
	google        *oauth.GoogleProvider
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetMailgun(m *mailer.Mailgun)            { mailgunClient = m }
func GetMailgun() *mailer.Mailgun             { return mailgunClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetDispatcher(d *mailer.Dispatcher)      { dispatcher = d }
func GetDispatcher() *mailer.Dispatcher       { return dispatcher }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetCardIndex(i *search.CardIndex)        { cardIndex = i }
func GetCardIndex() *search.CardIndex         { return cardIndex }
func SetTCG(c *tcgapi.Client)                 { tcgClient = c }
func GetTCG() *tcgapi.Client                  { return tcgClient }
func SetGoogle(p *oauth.GoogleProvider)       { google = p }
func GetGoogle() *oauth.GoogleProvider        { return google }
