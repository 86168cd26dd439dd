package repository

import (
	"context"

	"devhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// relation describes a (owner, user) set table such as post_likes.
type relation struct {
	table      string
	ownerCol   string
	ownerTable string
	ownerName  string
	newRow     func(ownerID, userID uint) any
}

var (
	postLikes = relation{
		table: "post_likes", ownerCol: "post_id", ownerTable: "posts", ownerName: "Post",
		newRow: func(o, u uint) any { return &models.PostLike{PostID: o, UserID: u} },
	}
	postBookmarks = relation{
		table: "post_bookmarks", ownerCol: "post_id", ownerTable: "posts", ownerName: "Post",
		newRow: func(o, u uint) any { return &models.PostBookmark{PostID: o, UserID: u} },
	}
	commentLikes = relation{
		table: "comment_likes", ownerCol: "comment_id", ownerTable: "comments", ownerName: "Comment",
		newRow: func(o, u uint) any { return &models.CommentLike{CommentID: o, UserID: u} },
	}
)

// toggle flips membership of (ownerID, userID) and returns the new state with
// the recounted set size, all in one transaction. The owner row is locked first
// so two toggles by the same user on the same owner serialise into two clean flips.
func toggle(ctx context.Context, db *gorm.DB, rel relation, ownerID, userID uint) (models.ToggleResult, error) {
	var result models.ToggleResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := rowExists(lockForUpdate(tx), rel.ownerTable, ownerID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError(rel.ownerName, ownerID)
		}
		if ok, err = rowExists(tx, "users", userID); err != nil {
			return err
		} else if !ok {
			return models.NewNotFoundError("User", userID)
		}

		del := tx.Where(rel.ownerCol+" = ? AND user_id = ?", ownerID, userID).Delete(rel.newRow(0, 0))
		if del.Error != nil {
			return del.Error
		}
		result.Active = del.RowsAffected == 0
		if result.Active {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rel.newRow(ownerID, userID)).Error; err != nil {
				return err
			}
		}

		return tx.Table(rel.table).Where(rel.ownerCol+" = ?", ownerID).Count(&result.Count).Error
	})
	return result, err
}

// isMember reports whether (ownerID, userID) is in the set; missing owners or users are NotFound.
func isMember(ctx context.Context, db *gorm.DB, rel relation, ownerID, userID uint) (bool, error) {
	tx := db.WithContext(ctx)
	ok, err := rowExists(tx, rel.ownerTable, ownerID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, models.NewNotFoundError(rel.ownerName, ownerID)
	}
	if ok, err = rowExists(tx, "users", userID); err != nil {
		return false, err
	} else if !ok {
		return false, models.NewNotFoundError("User", userID)
	}

	var count int64
	err = tx.Table(rel.table).Where(rel.ownerCol+" = ? AND user_id = ?", ownerID, userID).Count(&count).Error
	return count > 0, err
}
