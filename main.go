package main

import (
	_ "github.com/CollabioraDev/Collabiora-Backend-sub002/src/admintools"
	_ "github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
