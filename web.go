package main

import (
	"net/http"
	"time"

	"github.com/fasorail/recharges/website"
	"github.com/gorilla/mux"
)

// WebServer starts the web server
func WebServer() {
	router := mux.NewRouter().StrictSlash(true)

	webLog.Println("Starting Web server...")

	webKeybox, present := secrets.GetBox("web")
	if !present {
		webLog.Fatal("Web keybox not present in keybox")
	}

	website.Initialize(rootSqalxNode, webKeybox, webLog, statsHandler)
	website.ConfigureRouter(router)

	server := http.Server{
		Addr:         WebListenAddress,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	err := server.ListenAndServe()
	if err != nil {
		webLog.Println(err)
	}
	webLog.Println("Web server terminated")
}
