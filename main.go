package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gbl08ma/keybox"
	"github.com/gbl08ma/sqalx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/resource"
	"github.com/fasorail/recharges/types"
)

var (
	rdb           *sqlx.DB
	rootSqalxNode sqalx.Node
	secrets       *keybox.Keybox
	mainLog       = log.New(os.Stdout, "", log.Ldate|log.Ltime)
	apiLog        = log.New(os.Stdout, "api", log.Ldate|log.Ltime)
	webLog        = log.New(os.Stdout, "web", log.Ldate|log.Ltime)

	statsHandler *compute.StatsHandler
	sessionStore *resource.SessionStore

	// GitCommit is provided by govvv at compile-time
	GitCommit = "???"
	// BuildDate is provided by govvv at compile-time
	BuildDate = "???"
)

func main() {
	var err error
	mainLog.Println("Server starting, version", GitCommit, "built", BuildDate)
	mainLog.Println("Opening keybox...")
	secrets, err = keybox.Open(SecretsPath)
	if err != nil {
		mainLog.Fatalln(err)
	}
	mainLog.Println("Keybox opened")

	mainLog.Println("Opening database...")
	databaseURI, present := secrets.Get("databaseURI")
	if !present {
		mainLog.Fatalln("Database connection string not present in keybox")
	}
	rdb, err = sqlx.Open("postgres", databaseURI)
	if err != nil {
		mainLog.Fatalln(err)
	}
	defer rdb.Close()

	err = rdb.Ping()
	if err != nil {
		mainLog.Fatalln(err)
	}
	rdb.SetMaxOpenConns(MaxDBconnectionPoolSize)

	rootSqalxNode, err = sqalx.New(rdb)
	if err != nil {
		mainLog.Fatalln(err)
	}

	err = types.Migrate(rootSqalxNode)
	if err != nil {
		mainLog.Fatalln(err)
	}
	mainLog.Println("Database opened")

	err = bootstrapAdmin(rootSqalxNode)
	if err != nil {
		mainLog.Fatalln(err)
	}

	compute.Initialize(rootSqalxNode, mainLog)
	statsHandler = compute.NewStatsHandler(SnapshotCacheTTL)
	sessionStore = resource.NewSessionStore(APISessionTTL)

	stop := make(chan struct{})
	go compute.AlertSweeper(AlertSweepInterval, stop)
	go StatsSender(stop)
	go WebServer()
	go APIserver()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	mainLog.Println("Received", sig, "- shutting down")
	close(stop)
}

// bootstrapAdmin creates the super_admin described in the bootstrapAdmin
// keybox when there are no users yet
func bootstrapAdmin(node sqalx.Node) error {
	adminKeybox, present := secrets.GetBox("bootstrapAdmin")
	if !present {
		return nil
	}

	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := types.CountUsers(tx)
	if err != nil || count > 0 {
		return err
	}

	email, present := adminKeybox.Get("email")
	password, present2 := adminKeybox.Get("password")
	if !present || !present2 {
		mainLog.Fatalln("Bootstrap admin email/password not present in keybox")
	}
	fullName, _ := adminKeybox.Get("fullName")

	user, err := types.NewUser(email, fullName, password, types.RoleSuperAdmin, time.Now())
	if err != nil {
		return err
	}
	err = user.Update(tx)
	if err != nil {
		return err
	}
	mainLog.Println("Created bootstrap super_admin", user.Email)
	return tx.Commit()
}
