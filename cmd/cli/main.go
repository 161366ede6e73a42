package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yourorg/kyotransit/internal/arukumachi"
	"github.com/yourorg/kyotransit/internal/cache"
	appdb "github.com/yourorg/kyotransit/internal/db"
	"github.com/yourorg/kyotransit/internal/models"
	"github.com/yourorg/kyotransit/internal/refdata"
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("==== KyoTransit CLI ====")
		fmt.Println("1) Health check API")
		fmt.Println("2) Seed reference data")
		fmt.Println("3) One-shot route search")
		fmt.Println("4) Exit")
		fmt.Print("Select option: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			doHealthCheck()
		case "2":
			doSeed()
		case "3":
			doSearch(reader)
		case "4":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Invalid option")
		}
		fmt.Println()
	}
}

func doHealthCheck() {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:8080"
	}
	url := strings.TrimRight(base, "/") + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		fmt.Println("Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Health status:", resp.Status)
}

func doSeed() {
	db, err := appdb.Connect()
	if err != nil {
		log.Println("DB connect error:", err)
		return
	}
	defer db.Close()
	if err := appdb.EnsureSchema(db); err != nil {
		log.Println("Ensure schema error:", err)
		return
	}
	seedReferenceData(db)
}

// seedStops is a small starter set around the usual tourist axis. A
// production deployment imports the full operator lists instead.
var seedStops = []struct {
	nameJa, nameEn, kind, operator string
	lat, lng                       float64
}{
	{"京都駅", "Kyoto Station", models.KindTrainStation, "JR", 34.9858, 135.7588},
	{"京都駅前", "Kyoto Station Bus Terminal", models.KindBusStop, "市バス", 34.9862, 135.7585},
	{"四条烏丸", "Shijo Karasuma", models.KindBusStop, "市バス", 35.0038, 135.7596},
	{"烏丸", "Karasuma", models.KindTrainStation, "阪急", 35.0037, 135.7600},
	{"浄土寺", "Jodoji", models.KindBusStop, "市バス", 35.0253, 135.7936},
	{"銀閣寺前", "Ginkakuji-mae", models.KindBusStop, "市バス", 35.0262, 135.7961},
	{"銀閣寺道", "Ginkakuji-michi", models.KindBusStop, "市バス", 35.0280, 135.7929},
	{"清水道", "Kiyomizu-michi", models.KindBusStop, "市バス", 34.9966, 135.7771},
	{"五条坂", "Gojozaka", models.KindBusStop, "市バス", 34.9943, 135.7755},
	{"嵐山", "Arashiyama", models.KindTrainStation, "京福電鉄", 35.0095, 135.6776},
	{"嵐山", "Arashiyama", models.KindTrainStation, "阪急", 35.0092, 135.6795},
	{"嵐山天龍寺前", "Arashiyama Tenryuji-mae", models.KindBusStop, "市バス", 35.0107, 135.6756},
}

var seedLandmarks = []struct {
	nameJa, nameEn string
	lat, lng       float64
}{
	{"清水寺", "Kiyomizu-dera", 34.9949, 135.7850},
	{"銀閣寺", "Ginkaku-ji", 35.0270, 135.7982},
	{"金閣寺", "Kinkaku-ji", 35.0394, 135.7292},
	{"伏見稲荷大社", "Fushimi Inari Taisha", 34.9671, 135.7727},
}

var seedCoefficients = []struct {
	name, language, value string
}{
	{"hint_count", "ja", "10"},
	{"hint_count", "en", "10"},
	{"first_departure", "ja", "06:00"},
	{"first_departure", "en", "06:00"},
	{"last_departure", "ja", "23:00"},
	{"last_departure", "en", "23:00"},
}

func seedReferenceData(db *sql.DB) {
	stops := 0
	for _, s := range seedStops {
		_, err := db.Exec(
			"INSERT IGNORE INTO stops (name_ja, name_en, kind, operator, latitude, longitude) VALUES (?,?,?,?,?,?)",
			s.nameJa, s.nameEn, s.kind, s.operator, s.lat, s.lng)
		if err != nil {
			fmt.Println("Seed: stop insert error:", err)
			return
		}
		stops++
	}
	landmarks := 0
	for _, l := range seedLandmarks {
		_, err := db.Exec(
			"INSERT IGNORE INTO landmarks (name_ja, name_en, latitude, longitude) VALUES (?,?,?,?)",
			l.nameJa, l.nameEn, l.lat, l.lng)
		if err != nil {
			fmt.Println("Seed: landmark insert error:", err)
			return
		}
		landmarks++
	}
	for _, co := range seedCoefficients {
		_, err := db.Exec(
			"INSERT IGNORE INTO coefficients (name, language, value) VALUES (?,?,?)",
			co.name, co.language, co.value)
		if err != nil {
			fmt.Println("Seed: coefficient insert error:", err)
			return
		}
	}
	fmt.Printf("Seed: %d stops, %d landmarks, %d coefficients\n", stops, landmarks, len(seedCoefficients))
}

func doSearch(reader *bufio.Reader) {
	fmt.Print("From: ")
	from, _ := reader.ReadString('\n')
	fmt.Print("To: ")
	to, _ := reader.ReadString('\n')
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		fmt.Println("Search: from and to required")
		return
	}

	db, err := appdb.Connect()
	if err != nil {
		log.Println("DB connect error:", err)
		return
	}
	defer db.Close()

	baseURL := os.Getenv("UPSTREAM_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.arukumachikyoto.jp"
	}
	pageCache := cache.NewCache(90*time.Second, 5*time.Minute)
	defer pageCache.Stop()

	scraper := arukumachi.NewScraper(baseURL, arukumachi.NewChromeFetcher(), refdata.NewProvider(db), pageCache, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	routes, err := scraper.Search(ctx, models.TransitSearchRequest{From: from, To: to, Language: "ja"})
	if err != nil {
		fmt.Println("Search: error:", err)
		return
	}
	if len(routes) == 0 {
		fmt.Println("Search: no routes found")
		return
	}
	out, _ := json.MarshalIndent(routes, "", "  ")
	fmt.Println(string(out))
}
