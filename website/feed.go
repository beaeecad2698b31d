package website

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/fasorail/recharges/compute"
	"github.com/fasorail/recharges/types"
	"github.com/fasorail/recharges/utils"
	"github.com/gorilla/feeds"
)

// feedWindow is how far back expired recharges are still listed in the feed
const feedWindow = 7 * 24 * time.Hour

// validFeedToken returns whether token grants access to the feed
func validFeedToken(token string) bool {
	return feedToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(feedToken)) == 1
}

// feedRecharges returns the recharges worth announcing at now, the most
// urgent first: those expiring soon and those that expired within feedWindow
func feedRecharges(s *compute.Snapshot, now time.Time) []*types.Recharge {
	var result []*types.Recharge
	for _, recharge := range s.Recharges {
		switch compute.StatusOf(recharge, now) {
		case compute.StatusExpiringSoon:
			result = append(result, recharge)
		case compute.StatusExpired:
			if now.Sub(recharge.EndDate) <= feedWindow {
				result = append(result, recharge)
			}
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EndDate.Before(result[j].EndDate)
	})
	return result
}

// buildFeed returns the feed of the recharges worth announcing at now
func buildFeed(s *compute.Snapshot, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "Recharges des gares",
		Link:        &feeds.Link{Href: websiteURL},
		Description: "Recharges qui arrivent à expiration ou qui ont expiré récemment",
		Author:      &feeds.Author{Name: "Suivi des recharges"},
		Updated:     now,
	}

	feed.Items = []*feeds.Item{}
	for _, recharge := range feedRecharges(s, now) {
		status := compute.StatusOf(recharge, now)
		gareID := s.RechargeGareID(recharge)
		description := fmt.Sprintf("Gare: %s\nOpérateur: %s\nVolume: %s\nCoût: %s FCFA\nFin: %s (%s)",
			s.GareName(gareID), recharge.Operator, recharge.Volume,
			compute.FormatAmount(recharge.Cost), utils.FormatFrenchDate(recharge.EndDate),
			compute.RemainingLabel(recharge.EndDate, now))
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          recharge.ID,
			Title:       fmt.Sprintf("%s - Ligne %s", status.Label(), s.RechargeLineNumber(recharge)),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/reports/gare/%s", websiteURL, gareID)},
			Description: description,
			Created:     recharge.CreatedAt,
		})
	}
	return feed
}

// RSSFeed serves the RSS feed of expiring recharges
func RSSFeed(w http.ResponseWriter, r *http.Request) {
	if !validFeedToken(r.URL.Query().Get("token")) {
		http.NotFound(w, r)
		return
	}

	tx, err := rootSqalxNode.Beginx()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}
	defer tx.Commit() // read-only tx

	s, err := statsHandler.Snapshot(tx)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		webLog.Println(err)
		return
	}

	rss, err := buildFeed(s, time.Now()).ToRss()
	if err != nil {
		webLog.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}
