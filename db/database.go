package db

import (
	"database/sql"
	"encoding/base64"
	"sync"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	_ "github.com/mattn/go-sqlite3" // Import go-sqlite3 library
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
)

var log = logger.GetOrCreate("database")

const schema = `create table if not exists Users (
	ID integer primary key autoincrement,
	TgID integer not null unique,
	TgUser text not null default '',
	TgFirst text not null default '',
	TgLast text not null default '',
	PublicKey text not null default '',
	ContractID text not null default ''
)`

// Database - holds the required fields of a database
type Database struct {
	path  string
	sqldb *sql.DB

	users    map[int64]*data.User
	usersMut sync.Mutex
}

// NewDatabase - opens the database, creating its tables if needed, and loads the users in memory
func NewDatabase(databasePath string) (*Database, error) {
	sqldb, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		log.Error("can not open database", "error", err)
		return nil, err
	}

	db := &Database{
		path:  databasePath,
		sqldb: sqldb,
		users: make(map[int64]*data.User),
	}

	_, err = db.sqldb.Exec(schema)
	if err != nil {
		log.Error("can not create database tables", "error", err)
		_ = db.sqldb.Close()
		return nil, errors.Wrap(err, "creating tables")
	}

	err = db.getUsers()
	if err != nil {
		log.Error("can not read users from database", "error", err)
		_ = db.sqldb.Close()
		return nil, err
	}

	return db, nil
}

// Close - closes the database
func (d *Database) Close() error {
	return d.sqldb.Close()
}

// getUsers - reads the users from the database
// it is called by NewDatabase
func (d *Database) getUsers() error {
	row, err := d.sqldb.Query("select ID, TgID, TgUser, TgFirst, TgLast, PublicKey, ContractID from Users")
	if err != nil {
		return err
	}

	defer row.Close()
	var (
		id         uint64
		tgID       int64
		tgUser     string
		tgFirst    string
		tgLast     string
		publicKey  string
		contractID string
	)
	for row.Next() {
		err = row.Scan(&id, &tgID, &tgUser, &tgFirst, &tgLast, &publicKey, &contractID)
		if err != nil {
			log.Warn("can not read user row from database", "error", err)
			continue
		}

		user := &data.User{
			ID:         id,
			TgID:       tgID,
			TgUser:     tgUser,
			TgFirst:    decodeName(tgFirst),
			TgLast:     decodeName(tgLast),
			PublicKey:  publicKey,
			ContractID: contractID,
		}

		d.usersMut.Lock()
		d.users[tgID] = user
		d.usersMut.Unlock()
	}

	return row.Err()
}

func decodeName(encoded string) string {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}

	return string(b)
}

func encodeName(name string) string {
	return base64.StdEncoding.EncodeToString([]byte(name))
}

// AddUser - adds a telegram user to the database
func (d *Database) AddUser(user *tgbotapi.User) (*data.User, error) {
	res, err := d.sqldb.Exec("insert into Users(TgID, TgUser, TgFirst, TgLast) values (?, ?, ?, ?)",
		user.ID, user.UserName, encodeName(user.FirstName), encodeName(user.LastName))
	if err != nil {
		log.Error("error adding user in database", "error", err)
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		log.Error("error adding user in database", "error", err)
		return nil, err
	}

	u := &data.User{
		ID:      uint64(id),
		TgID:    int64(user.ID),
		TgUser:  user.UserName,
		TgFirst: user.FirstName,
		TgLast:  user.LastName,
	}
	d.usersMut.Lock()
	d.users[u.TgID] = u
	d.usersMut.Unlock()

	return u, nil
}

// GetUserByTgID - returns a user by its Telegram ID
func (d *Database) GetUserByTgID(tgID int64) *data.User {
	d.usersMut.Lock()
	defer d.usersMut.Unlock()

	return d.users[tgID]
}

// GetUserByTgUser - same as GetUserByTgID with the addition that if the Telegram username,
// firstname or lastname have changed, it also updates them in the database
func (d *Database) GetUserByTgUser(tgUser *tgbotapi.User) *data.User {
	user := d.GetUserByTgID(int64(tgUser.ID))
	if user == nil {
		return nil
	}

	d.usersMut.Lock()
	changed := user.TgUser != tgUser.UserName || user.TgFirst != tgUser.FirstName || user.TgLast != tgUser.LastName
	if changed {
		user.TgUser = tgUser.UserName
		user.TgFirst = tgUser.FirstName
		user.TgLast = tgUser.LastName
	}
	d.usersMut.Unlock()

	if changed {
		_ = d.updateUser(user)
	}

	return user
}

// GetUsers - returns all registered users
func (d *Database) GetUsers() map[int64]*data.User {
	m := make(map[int64]*data.User)

	d.usersMut.Lock()
	for k, v := range d.users {
		m[k] = v
	}
	d.usersMut.Unlock()

	return m
}

// updateUser - updates in the database a user's Telegram credentials
func (d *Database) updateUser(user *data.User) error {
	_, err := d.sqldb.Exec("update Users set TgUser = ?, TgFirst = ?, TgLast = ? where ID = ?",
		user.TgUser, encodeName(user.TgFirst), encodeName(user.TgLast), user.ID)
	if err != nil {
		log.Warn("can not update user in database", "error", err, "user", user.ID)
		return err
	}

	return nil
}

// SetUserContract - saves the contract the user is working with
func (d *Database) SetUserContract(user *data.User, contractID string) error {
	_, err := d.sqldb.Exec("update Users set ContractID = ? where ID = ?", contractID, user.ID)
	if err != nil {
		log.Error("can not set user contract in database", "error", err, "user", user.ID)
		return err
	}

	d.usersMut.Lock()
	user.ContractID = contractID
	d.usersMut.Unlock()

	return nil
}

// SetUserPublicKey - saves the public key simulations are run for
func (d *Database) SetUserPublicKey(user *data.User, publicKey string) error {
	_, err := d.sqldb.Exec("update Users set PublicKey = ? where ID = ?", publicKey, user.ID)
	if err != nil {
		log.Error("can not set user public key in database", "error", err, "user", user.ID)
		return err
	}

	d.usersMut.Lock()
	user.PublicKey = publicKey
	d.usersMut.Unlock()

	return nil
}
